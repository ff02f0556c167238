package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanDB represents a persisted plant scan row.
type ScanDB struct {
	ScanID         uuid.UUID `db:"scan_id"`
	UserID         uuid.UUID `db:"user_id"`
	ImageURL       string    `db:"image_url"`
	CommonName     string    `db:"common_name"`
	ScientificName string    `db:"scientific_name"`
	Description    string    `db:"description"`
	Origin         string    `db:"origin"`
	Sunlight       string    `db:"sunlight"`
	Water          string    `db:"water"`
	GrowthRate     string    `db:"growth_rate"`
	Accuracy       int       `db:"accuracy"`
	CreatedAt      time.Time `db:"created_at"`
}

// ScanStats aggregates a user's scan history.
type ScanStats struct {
	TotalScans    int64 `json:"totalScans"`
	ThisWeek      int64 `json:"thisWeek"`
	AvgAccuracy   int   `json:"avgAccuracy"`
	UniqueSpecies int64 `json:"uniqueSpecies"`
}

// Pagination describes the page window of a scan listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalScans  int64 `json:"totalScans"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}
