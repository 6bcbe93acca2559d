// Package users serves the logged-in user's own profile.
package users

import (
	"time"

	"github.com/google/uuid"
)

// UserProfileResponse represents the data returned for a user profile.
type UserProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateUserProfileRequest represents the data for updating a user profile.
// An empty email clears it.
type UpdateUserProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}
