package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/user/yelpcamp-go/auth"
)

// UserService reads and updates profiles through the auth user repository.
type UserService struct {
	users auth.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users auth.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUserProfile returns the profile of userID.
func (s *UserService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*UserProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// UpdateUserProfile changes the email address. A conflict with another
// account surfaces as auth.ErrDuplicateEmail.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID uuid.UUID, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.UpdateEmail(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func toProfile(u *auth.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
