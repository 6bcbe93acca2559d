package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/yelpcamp-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

var (
	// ErrDuplicateUsername is returned when registering a taken username.
	ErrDuplicateUsername = apperror.NewConflictError("A user with the given username is already registered", nil)
	// ErrDuplicateEmail is returned when an email address is already in use.
	ErrDuplicateEmail = apperror.NewConflictError("A user with the given email is already registered", nil)
	// ErrUserNotFound is returned by repositories for unknown users.
	ErrUserNotFound = apperror.NewNotFoundError("user not found", nil)
)

// UserRepository stores users. Usernames and non-empty emails are unique.
type UserRepository interface {
	// Create fills in ID and CreatedAt.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error)
}

// PostgresUserRepository keeps users in the users table.
type PostgresUserRepository struct {
	dbPool  *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresUserRepository returns a repository on dbPool; timeout bounds each query.
func NewPostgresUserRepository(dbPool *pgxpool.Pool, timeout time.Duration) *PostgresUserRepository {
	return &PostgresUserRepository{dbPool: dbPool, timeout: timeout}
}

const userColumns = `id, username, COALESCE(email, ''), password, created_at`

func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO users (username, email, password)
              VALUES ($1, NULLIF($2, ''), $3)
              RETURNING id, created_at`
	err := r.dbPool.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return uniqueViolation(err, "failed to create user")
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresUserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	user, err := r.getOne(ctx,
		`UPDATE users SET email = NULLIF($2, '') WHERE id = $1 RETURNING `+userColumns, id, email)
	if err != nil {
		return nil, uniqueViolation(err, "failed to update user")
	}
	return user, nil
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, args ...any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	err := r.dbPool.QueryRow(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query user", err)
	}
	return &u, nil
}

// uniqueViolation maps a unique constraint failure to the matching conflict error.
func uniqueViolation(err error, msg string) error {
	if errors.Is(err, ErrUserNotFound) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return ErrDuplicateUsername
		}
		if strings.Contains(pgErr.ConstraintName, "email") {
			return ErrDuplicateEmail
		}
	}
	return apperror.NewDatabaseError(msg, err)
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]User)}
}

func (m *MemoryUserRepository) Create(ctx context.Context, user *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// A taken username wins over a taken email, whatever the map order.
	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrDuplicateUsername
		}
	}
	if user.Email != "" {
		for _, u := range m.users {
			if u.Email == user.Email {
				return ErrDuplicateEmail
			}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryUserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if email != "" {
		for otherID, other := range m.users {
			if otherID != id && other.Email == email {
				return nil, ErrDuplicateEmail
			}
		}
	}
	u.Email = email
	m.users[id] = u
	return &u, nil
}

// Ensure both repositories satisfy UserRepository at compile time.
var (
	_ UserRepository = (*PostgresUserRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
)
