package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered Truekeo user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Never serialized; kept only for the auth flow.
	PasswordHash string `json:"-"`
}

// Public strips fields that must not leave the auth surface.
func (u User) Public() User {
	u.Email = ""
	u.PasswordHash = ""
	return u
}
