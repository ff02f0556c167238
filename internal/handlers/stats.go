package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
)

// StatsProvider defines the interface that the service must implement.
type StatsProvider interface {
	Stats(ctx context.Context, userID uuid.UUID) (*models.ScanStats, error)
}

// ScanStats is the public JSON shape of a user's scan statistics.
// swagger:model ScanStats
type ScanStats struct {
	// Total number of scans
	TotalScans int64 `json:"totalScans"`

	// Scans created within the trailing 7 days
	ThisWeek int64 `json:"thisWeek"`

	// Mean accuracy rounded to nearest integer, 0 when there are no scans
	AvgAccuracy int `json:"avgAccuracy"`

	// Distinct scientific names
	UniqueSpecies int64 `json:"uniqueSpecies"`
}

// StatsResponse wraps a user's scan statistics.
// swagger:model StatsResponse
type StatsResponse struct {
	// Aggregate statistics
	Stats ScanStats `json:"stats"`
}

// NewStatsHandler returns an HTTP handler for the authenticated user's
// aggregate scan statistics.
// @Summary Get scan statistics
// @Description Returns total scans, scans this week, average accuracy and unique species count.
// @Tags plants
// @Produce json
// @Success 200 {object} handlers.StatsResponse "Statistics"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /api/plants/stats [get]
// @Security BearerAuth
func NewStatsHandler(svc StatsProvider, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		stats, err := svc.Stats(r.Context(), userID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(StatsResponse{
			Stats: ScanStats{
				TotalScans:    stats.TotalScans,
				ThisWeek:      stats.ThisWeek,
				AvgAccuracy:   stats.AvgAccuracy,
				UniqueSpecies: stats.UniqueSpecies,
			},
		})
	}
}
