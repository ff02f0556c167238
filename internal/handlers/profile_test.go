package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/services"
)

// userIDGetterFor returns a UserIDGetter that always yields the given ID.
func userIDGetterFor(userID uuid.UUID) UserIDGetter {
	return func(ctx context.Context) (uuid.UUID, bool) {
		return userID, true
	}
}

// noUserID is a UserIDGetter for requests that skipped authentication.
func noUserID(ctx context.Context) (uuid.UUID, bool) {
	return uuid.Nil, false
}

func TestGetProfileHandler(t *testing.T) {
	userID := uuid.New()
	avatar := "https://cdn.example.com/avatar.png"

	tests := []struct {
		name       string
		getter     UserIDGetter
		setup      func(svc *MockProfileService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockProfileService) {
				svc.EXPECT().GetProfile(gomock.Any(), userID).Return(&models.UserDB{
					UserID:   userID,
					FullName: "John Doe",
					Email:    "john@example.com",
					Avatar:   &avatar,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{"user":{"id":"` + userID.String() + `","fullName":"John Doe",` +
				`"email":"john@example.com","avatar":"` + avatar + `"}}`,
		},
		{
			name:       "no user in context",
			getter:     noUserID,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:   "user not found",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockProfileService) {
				svc.EXPECT().GetProfile(gomock.Any(), userID).Return(nil, services.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"User not found"}`,
		},
		{
			name:   "internal error",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockProfileService) {
				svc.EXPECT().GetProfile(gomock.Any(), userID).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockProfileService(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			rr := httptest.NewRecorder()

			NewGetProfileHandler(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		getter     UserIDGetter
		body       string
		setup      func(svc *MockProfileService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			getter: userIDGetterFor(userID),
			body:   `{"fullName":"  John Moss  ","email":"New@Example.com"}`,
			setup: func(svc *MockProfileService) {
				svc.EXPECT().
					UpdateProfile(gomock.Any(), userID, "John Moss", "new@example.com").
					Return(&models.UserDB{
						UserID:   userID,
						FullName: "John Moss",
						Email:    "new@example.com",
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{"message":"Profile updated successfully",` +
				`"user":{"id":"` + userID.String() + `","fullName":"John Moss","email":"new@example.com","avatar":null}}`,
		},
		{
			name:       "no user in context",
			getter:     noUserID,
			body:       `{"fullName":"John Moss","email":"new@example.com"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "invalid body",
			getter:     userIDGetterFor(userID),
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:       "short full name",
			getter:     userIDGetterFor(userID),
			body:       `{"fullName":"J","email":"new@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Full name must be at least 2 characters"}`,
		},
		{
			name:       "invalid email",
			getter:     userIDGetterFor(userID),
			body:       `{"fullName":"John Moss","email":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Enter a valid email address"}`,
		},
		{
			name:   "email belongs to another user",
			getter: userIDGetterFor(userID),
			body:   `{"fullName":"John Moss","email":"taken@example.com"}`,
			setup: func(svc *MockProfileService) {
				svc.EXPECT().
					UpdateProfile(gomock.Any(), userID, "John Moss", "taken@example.com").
					Return(nil, services.ErrEmailAlreadyExists)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"This email address belongs to another user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockProfileService(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			NewUpdateProfileHandler(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
