package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/services"
)

// scanRouter mounts the scan handlers the way the server does, so the
// {scanID} URL parameter resolves in tests.
func scanRouter(svc ScanProvider, getter UserIDGetter) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/plants/scans", NewListScansHandler(svc, getter))
	r.Get("/api/plants/scans/{scanID}", NewGetScanHandler(svc, getter))
	r.Delete("/api/plants/scans/{scanID}", NewDeleteScanHandler(svc, getter))
	return r
}

func TestListScansHandler(t *testing.T) {
	userID := uuid.New()
	scanID := uuid.New()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	scans := []models.ScanDB{{
		ScanID:         scanID,
		UserID:         userID,
		ImageURL:       "http://example.com/uploads/image-1.jpg",
		CommonName:     "Monstera",
		ScientificName: "Monstera deliciosa",
		Accuracy:       95,
		CreatedAt:      createdAt,
	}}
	pagination := &models.Pagination{CurrentPage: 2, TotalPages: 3, TotalScans: 12, HasNext: true, HasPrev: true}

	tests := []struct {
		name       string
		target     string
		getter     UserIDGetter
		setup      func(svc *MockScanProvider)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "page and limit forwarded",
			target: "/api/plants/scans?page=2&limit=5",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().List(gomock.Any(), userID, 2, 5).Return(scans, pagination, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"scans": [{
					"id": "` + scanID.String() + `",
					"imageUrl": "http://example.com/uploads/image-1.jpg",
					"commonName": "Monstera",
					"scientificName": "Monstera deliciosa",
					"description": "",
					"origin": "",
					"sunlight": "",
					"water": "",
					"growthRate": "",
					"accuracy": 95,
					"createdAt": "2025-06-01T12:00:00Z"
				}],
				"pagination": {"currentPage":2,"totalPages":3,"totalScans":12,"hasNext":true,"hasPrev":true}
			}`,
		},
		{
			name:   "garbage paging falls back to defaults",
			target: "/api/plants/scans?page=abc&limit=-3",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().List(gomock.Any(), userID, 1, 10).
					Return([]models.ScanDB{}, &models.Pagination{CurrentPage: 1}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"scans": [],
				"pagination": {"currentPage":1,"totalPages":0,"totalScans":0,"hasNext":false,"hasPrev":false}
			}`,
		},
		{
			name:       "no user in context",
			target:     "/api/plants/scans",
			getter:     noUserID,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:   "internal error",
			target: "/api/plants/scans",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().List(gomock.Any(), userID, 1, 10).Return(nil, nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockScanProvider(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()

			scanRouter(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestGetScanHandler(t *testing.T) {
	userID := uuid.New()
	scanID := uuid.New()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		target     string
		getter     UserIDGetter
		setup      func(svc *MockScanProvider)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			target: "/api/plants/scans/" + scanID.String(),
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().Get(gomock.Any(), userID, scanID).Return(&models.ScanDB{
					ScanID:         scanID,
					UserID:         userID,
					ImageURL:       "http://example.com/uploads/image-1.jpg",
					CommonName:     "Monstera",
					ScientificName: "Monstera deliciosa",
					Accuracy:       95,
					CreatedAt:      createdAt,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"scan": {
					"id": "` + scanID.String() + `",
					"imageUrl": "http://example.com/uploads/image-1.jpg",
					"commonName": "Monstera",
					"scientificName": "Monstera deliciosa",
					"description": "",
					"origin": "",
					"sunlight": "",
					"water": "",
					"growthRate": "",
					"accuracy": 95,
					"createdAt": "2025-06-01T12:00:00Z"
				}
			}`,
		},
		{
			name:       "malformed scan ID reads as not found",
			target:     "/api/plants/scans/not-a-uuid",
			getter:     userIDGetterFor(userID),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Scan not found"}`,
		},
		{
			name:   "foreign or absent scan",
			target: "/api/plants/scans/" + scanID.String(),
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().Get(gomock.Any(), userID, scanID).Return(nil, services.ErrScanNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Scan not found"}`,
		},
		{
			name:       "no user in context",
			target:     "/api/plants/scans/" + scanID.String(),
			getter:     noUserID,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockScanProvider(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()

			scanRouter(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestDeleteScanHandler(t *testing.T) {
	userID := uuid.New()
	scanID := uuid.New()

	tests := []struct {
		name       string
		target     string
		getter     UserIDGetter
		setup      func(svc *MockScanProvider)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			target: "/api/plants/scans/" + scanID.String(),
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().Delete(gomock.Any(), userID, scanID).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Scan deleted successfully"}`,
		},
		{
			name:   "foreign or absent scan",
			target: "/api/plants/scans/" + scanID.String(),
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().Delete(gomock.Any(), userID, scanID).Return(services.ErrScanNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Scan not found"}`,
		},
		{
			name:       "malformed scan ID",
			target:     "/api/plants/scans/not-a-uuid",
			getter:     userIDGetterFor(userID),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Scan not found"}`,
		},
		{
			name:   "internal error",
			target: "/api/plants/scans/" + scanID.String(),
			getter: userIDGetterFor(userID),
			setup: func(svc *MockScanProvider) {
				svc.EXPECT().Delete(gomock.Any(), userID, scanID).Return(errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockScanProvider(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			rr := httptest.NewRecorder()

			scanRouter(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
