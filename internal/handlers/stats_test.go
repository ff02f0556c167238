package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/adilbek/plantscan-api/internal/models"
)

func TestStatsHandler(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		getter     UserIDGetter
		setup      func(svc *MockStatsProvider)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockStatsProvider) {
				svc.EXPECT().Stats(gomock.Any(), userID).Return(&models.ScanStats{
					TotalScans:    42,
					ThisWeek:      5,
					AvgAccuracy:   93,
					UniqueSpecies: 17,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"stats":{"totalScans":42,"thisWeek":5,"avgAccuracy":93,"uniqueSpecies":17}}`,
		},
		{
			name:   "empty history is all zeros",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockStatsProvider) {
				svc.EXPECT().Stats(gomock.Any(), userID).Return(&models.ScanStats{}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"stats":{"totalScans":0,"thisWeek":0,"avgAccuracy":0,"uniqueSpecies":0}}`,
		},
		{
			name:       "no user in context",
			getter:     noUserID,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:   "internal error",
			getter: userIDGetterFor(userID),
			setup: func(svc *MockStatsProvider) {
				svc.EXPECT().Stats(gomock.Any(), userID).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockStatsProvider(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/plants/stats", nil)
			rr := httptest.NewRecorder()

			NewStatsHandler(svc, tt.getter).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
