package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse reports service liveness.
// swagger:model HealthResponse
type HealthResponse struct {
	// Status
	// example: OK
	Status string `json:"status"`

	// Current server time, RFC 3339
	Timestamp string `json:"timestamp"`

	// Seconds since the process started
	Uptime float64 `json:"uptime"`
}

// NewHealthHandler returns an HTTP handler reporting service health.
// @Summary Health check
// @Description Returns service status, current time and uptime.
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Service health"
// @Router /api/health [get]
func NewHealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startedAt).Seconds(),
		})
	}
}
