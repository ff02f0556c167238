package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database.
type UserDB struct {
	UserID       uuid.UUID `db:"user_id"`       // Primary key
	FullName     string    `db:"full_name"`     // Display name
	Email        string    `db:"email"`         // Unique email, stored lowercase
	PasswordHash string    `db:"password_hash"` // bcrypt hash
	Avatar       *string   `db:"avatar"`        // Optional avatar reference
	CreatedAt    time.Time `db:"created_at"`    // Creation timestamp
	UpdatedAt    time.Time `db:"updated_at"`    // Last update timestamp
}
