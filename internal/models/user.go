package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID         uuid.UUID `json:"id" db:"user_id"`                     // Primary key
	Username       string    `json:"username" db:"username"`              // Unique username
	PasswordHash   string    `json:"-" db:"password_hash"`                // Hashed password, never serialized
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"` // Public URL of the profile image
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`           // Creation timestamp
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`           // Last update timestamp
}

// UserPublic is the externally visible user shape.
type UserPublic struct {
	UserID         uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture"`
}

// Public strips everything that must not leave the service.
func (u UserDB) Public() UserPublic {
	return UserPublic{
		UserID:         u.UserID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}
