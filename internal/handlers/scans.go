package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/services"
)

// ScanProvider defines the scan history operations the handlers delegate to.
type ScanProvider interface {
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ScanDB, *models.Pagination, error)
	Get(ctx context.Context, userID, scanID uuid.UUID) (*models.ScanDB, error)
	Delete(ctx context.Context, userID, scanID uuid.UUID) error
}

// ScanResponse is the public JSON shape of one scan.
// swagger:model ScanResponse
type ScanResponse struct {
	// Scan ID
	ID uuid.UUID `json:"id"`

	// Public URL of the uploaded image
	ImageURL string `json:"imageUrl"`

	// Common plant name
	// example: Monstera
	CommonName string `json:"commonName"`

	// Scientific plant name
	// example: Monstera deliciosa
	ScientificName string `json:"scientificName"`

	// Description
	Description string `json:"description"`

	// Geographic origin
	Origin string `json:"origin"`

	// Sunlight requirement
	Sunlight string `json:"sunlight"`

	// Watering requirement
	Water string `json:"water"`

	// Growth rate
	GrowthRate string `json:"growthRate"`

	// Accuracy score, 0-100
	Accuracy int `json:"accuracy"`

	// Creation timestamp
	CreatedAt time.Time `json:"createdAt"`
}

func newScanResponse(scan *models.ScanDB) ScanResponse {
	return ScanResponse{
		ID:             scan.ScanID,
		ImageURL:       scan.ImageURL,
		CommonName:     scan.CommonName,
		ScientificName: scan.ScientificName,
		Description:    scan.Description,
		Origin:         scan.Origin,
		Sunlight:       scan.Sunlight,
		Water:          scan.Water,
		GrowthRate:     scan.GrowthRate,
		Accuracy:       scan.Accuracy,
		CreatedAt:      scan.CreatedAt,
	}
}

// ListScansResponse is one page of a user's scan history.
// swagger:model ListScansResponse
type ListScansResponse struct {
	// Scans, newest first
	Scans []ScanResponse `json:"scans"`

	// Pagination metadata
	Pagination models.Pagination `json:"pagination"`
}

// GetScanResponse wraps a single scan.
// swagger:model GetScanResponse
type GetScanResponse struct {
	// Scan
	Scan ScanResponse `json:"scan"`
}

// DeleteScanResponse represents a successful scan deletion.
// swagger:model DeleteScanResponse
type DeleteScanResponse struct {
	// Success message
	// example: Scan deleted successfully
	Message string `json:"message"`
}

// NewListScansHandler returns an HTTP handler for listing the authenticated
// user's scans. Page and limit query parameters default to 1 and 10 and are
// coerced to positive integers.
// @Summary List scans
// @Description Returns one page of the user's scan history, newest first.
// @Tags plants
// @Produce json
// @Param page query int false "Page number, defaults to 1"
// @Param limit query int false "Page size, defaults to 10"
// @Success 200 {object} handlers.ListScansResponse "Scan page"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /api/plants/scans [get]
// @Security BearerAuth
func NewListScansHandler(svc ScanProvider, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 10)

		scans, pagination, err := svc.List(r.Context(), userID, page, limit)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListScansResponse{
			Scans:      make([]ScanResponse, 0, len(scans)),
			Pagination: *pagination,
		}
		for i := range scans {
			resp.Scans = append(resp.Scans, newScanResponse(&scans[i]))
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// NewGetScanHandler returns an HTTP handler for fetching a single scan of
// the authenticated user.
// @Summary Get one scan
// @Description Returns one scan owned by the user.
// @Tags plants
// @Produce json
// @Param scanID path string true "Scan ID"
// @Success 200 {object} handlers.GetScanResponse "Scan"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Scan not found"
// @Router /api/plants/scans/{scanID} [get]
// @Security BearerAuth
func NewGetScanHandler(svc ScanProvider, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		scanID, err := uuid.Parse(chi.URLParam(r, "scanID"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Scan not found"})
			return
		}

		scan, err := svc.Get(r.Context(), userID, scanID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrScanNotFound):
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Scan not found"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(GetScanResponse{Scan: newScanResponse(scan)})
	}
}

// NewDeleteScanHandler returns an HTTP handler for deleting a single scan of
// the authenticated user, along with its stored image.
// @Summary Delete one scan
// @Description Deletes one scan owned by the user and removes its image file.
// @Tags plants
// @Produce json
// @Param scanID path string true "Scan ID"
// @Success 200 {object} handlers.DeleteScanResponse "Scan deleted"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Scan not found"
// @Router /api/plants/scans/{scanID} [delete]
// @Security BearerAuth
func NewDeleteScanHandler(svc ScanProvider, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		scanID, err := uuid.Parse(chi.URLParam(r, "scanID"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Scan not found"})
			return
		}

		if err := svc.Delete(r.Context(), userID, scanID); err != nil {
			switch {
			case errors.Is(err, services.ErrScanNotFound):
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Scan not found"})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(DeleteScanResponse{Message: "Scan deleted successfully"})
	}
}

// queryInt parses a positive integer query parameter, falling back to def
// when the parameter is absent, non-numeric, or not positive.
func queryInt(r *http.Request, name string, def int) int {
	val, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || val < 1 {
		return def
	}
	return val
}
