package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/services"
)

// ProfileService defines the profile operations the handlers delegate to.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.UserDB, error)
}

// UserIDGetter extracts the authenticated user ID from the request context.
type UserIDGetter func(ctx context.Context) (uuid.UUID, bool)

// ProfileResponse wraps a user profile.
// swagger:model ProfileResponse
type ProfileResponse struct {
	// User profile
	User UserResponse `json:"user"`
}

// UpdateProfileRequest represents the JSON body for a profile update.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// Full name, at least 2 characters
	// required: true
	// example: John Doe
	FullName string `json:"fullName"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`
}

// UpdateProfileResponse represents a successful profile update.
// swagger:model UpdateProfileResponse
type UpdateProfileResponse struct {
	// Success message
	// example: Profile updated successfully
	Message string `json:"message"`

	// Updated user profile
	User UserResponse `json:"user"`
}

// NewGetProfileHandler returns an HTTP handler for fetching the profile of
// the authenticated user.
// @Summary Get profile
// @Description Returns the authenticated user's profile.
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.ProfileResponse "User profile"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Router /api/auth/profile [get]
// @Security BearerAuth
func NewGetProfileHandler(svc ProfileService, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		user, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "User not found"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ProfileResponse{User: newUserResponse(user)})
	}
}

// NewUpdateProfileHandler returns an HTTP handler for updating the profile
// of the authenticated user.
// @Summary Update profile
// @Description Updates the authenticated user's name and email. Emails stay unique.
// @Tags auth
// @Accept json
// @Produce json
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Profile update request"
// @Success 200 {object} handlers.UpdateProfileResponse "Profile updated"
// @Failure 400 {object} handlers.ErrorResponse "Validation failure or email taken"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /api/auth/profile [put]
// @Security BearerAuth
func NewUpdateProfileHandler(svc ProfileService, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid request body"})
			return
		}

		fullName, ok := validFullName(req.FullName)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Full name must be at least 2 characters"})
			return
		}
		email, ok := normalizeEmail(req.Email)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Enter a valid email address"})
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, fullName, email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "This email address belongs to another user"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(UpdateProfileResponse{
			Message: "Profile updated successfully",
			User:    newUserResponse(user),
		})
	}
}
