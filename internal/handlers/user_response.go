package handlers

import (
	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/models"
)

// UserResponse is the public JSON shape of a user.
// swagger:model UserResponse
type UserResponse struct {
	// User ID
	ID uuid.UUID `json:"id"`

	// Full name
	// example: John Doe
	FullName string `json:"fullName"`

	// Email
	// example: john@example.com
	Email string `json:"email"`

	// Avatar reference, null when unset
	Avatar *string `json:"avatar"`
}

func newUserResponse(user *models.UserDB) UserResponse {
	return UserResponse{
		ID:       user.UserID,
		FullName: user.FullName,
		Email:    user.Email,
		Avatar:   user.Avatar,
	}
}

// ErrorResponse is the uniform JSON error body.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// example: Internal server error
	Error string `json:"error"`
}
