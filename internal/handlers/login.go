package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, *models.UserDB, error)
}

// LoginRequest represents the JSON body for user login.
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response.
// swagger:model LoginResponse
type LoginResponse struct {
	// Success message
	// example: Logged in successfully
	Message string `json:"message"`

	// JWT session token
	Token string `json:"token"`

	// Authenticated user
	User UserResponse `json:"user"`
}

// NewLoginHandler returns an HTTP handler for user login.
// Wrong email and wrong password produce the same 400 response so the
// caller cannot tell which one failed.
// @Summary User login
// @Description Authenticate a user and return a JWT session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} handlers.LoginResponse "JWT token returned"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body or wrong credentials"
// @Router /api/auth/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid request body"})
			return
		}

		email, ok := normalizeEmail(req.Email)
		if !ok || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid email or password"})
			return
		}

		token, user, err := svc.Login(r.Context(), email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid email or password"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Message: "Logged in successfully",
			Token:   token,
			User:    newUserResponse(user),
		})
	}
}
