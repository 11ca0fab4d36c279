package models

import (
	"time"

	"github.com/google/uuid"
)

// PostDB represents a post record in the database
type PostDB struct {
	PostID    uuid.UUID `json:"id" db:"post_id"`           // Primary key
	UserID    uuid.UUID `json:"userId" db:"user_id"`       // Owning user
	Content   string    `json:"content" db:"content"`      // Text content
	MediaURL  *string   `json:"media" db:"media_url"`      // Optional URL of uploaded media
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // Set once, server-assigned
}

// PostWithAuthor is a post row joined with the author's display fields.
type PostWithAuthor struct {
	PostDB
	Username       string `json:"username" db:"username"`
	ProfilePicture string `json:"profilePicture" db:"profile_picture"`
}
