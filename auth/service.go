package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/yelpcamp-go/apperror"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike, so a caller cannot tell which one it was.
var ErrInvalidCredentials = apperror.NewAuthError(MsgBadCredential, nil)

// placeholderPassword is hashed once per service. Logins for unknown users are
// compared against that hash so they cost as much as real ones.
const placeholderPassword = "yelpcamp-placeholder-password"

// AuthService is the credential verifier.
type AuthService struct {
	users       UserRepository
	cost        int
	placeholder []byte
	logger      *slog.Logger
}

// NewAuthService creates an AuthService hashing with the given bcrypt cost.
func NewAuthService(users UserRepository, cost int, logger *slog.Logger) (*AuthService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	placeholder, err := bcrypt.GenerateFromPassword([]byte(placeholderPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare placeholder hash: %w", err)
	}
	return &AuthService{users: users, cost: cost, placeholder: placeholder, logger: logger}, nil
}

// Register creates a user. It fails with a ValidationError for an empty
// username or password and with ErrDuplicateUsername for a taken username;
// the existing account is left untouched.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	var missing []string
	if username == "" {
		missing = append(missing, `"username" is required`)
	}
	if password == "" {
		missing = append(missing, `"password" is required`)
	}
	if len(missing) > 0 {
		return nil, apperror.NewValidationError(strings.Join(missing, ","), nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:       username,
		Email:          strings.ToLower(strings.TrimSpace(email)),
		HashedPassword: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate returns the user whose username and password match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		// Same bcrypt work as a real comparison; the result is discarded.
		_ = bcrypt.CompareHashAndPassword(s.placeholder, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}
