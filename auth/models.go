package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. The password is only ever held as a bcrypt hash.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	HashedPassword string    `json:"-"` // Do not expose hashed password
	CreatedAt      time.Time `json:"created_at"`
}

// PrincipalID makes *User usable as the pipeline's authenticated principal.
func (u *User) PrincipalID() uuid.UUID { return u.ID }
