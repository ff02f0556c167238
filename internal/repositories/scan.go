package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
)

const scanColumns = `scan_id, user_id, image_url, common_name, scientific_name,
	description, origin, sunlight, water, growth_rate, accuracy, created_at`

// ScanWriteRepository provides write access to plant scans.
type ScanWriteRepository struct {
	db *sqlx.DB
}

// NewScanWriteRepository creates a ScanWriteRepository.
func NewScanWriteRepository(db *sqlx.DB) *ScanWriteRepository {
	return &ScanWriteRepository{db: db}
}

// Save inserts a classification result and returns the created scan.
func (r *ScanWriteRepository) Save(ctx context.Context, userID uuid.UUID, imageURL string, info *models.PlantInfo, accuracy int) (*models.ScanDB, error) {
	query := `
		INSERT INTO plant_scans
			(user_id, image_url, common_name, scientific_name, description,
			 origin, sunlight, water, growth_rate, accuracy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + scanColumns

	args := []any{
		userID, imageURL,
		info.CommonName, info.ScientificName, info.Description,
		info.Origin, info.Sunlight, info.Water, info.GrowthRate,
		accuracy,
	}

	var scan models.ScanDB
	err := r.db.GetContext(ctx, &scan, query, args...)

	logger.Log.Infow("scan insert",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"accuracy", accuracy,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// Delete removes a scan owned by the given user.
// Deleting an absent or foreign scan affects no rows and returns sql.ErrNoRows.
func (r *ScanWriteRepository) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	const query = `
		DELETE FROM plant_scans
		WHERE scan_id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, scanID, userID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("scan delete",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{scanID, userID},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ScanReadRepository provides read access to plant scans.
type ScanReadRepository struct {
	db *sqlx.DB
}

// NewScanReadRepository creates a ScanReadRepository.
func NewScanReadRepository(db *sqlx.DB) *ScanReadRepository {
	return &ScanReadRepository{db: db}
}

// ListByUser returns one page of the user's scans, newest first.
func (r *ScanReadRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ScanDB, error) {
	query := `
		SELECT ` + scanColumns + `
		FROM plant_scans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	scans := []models.ScanDB{}
	err := r.db.SelectContext(ctx, &scans, query, userID, limit, offset)

	logger.Log.Infow("scan query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, limit, offset},
		"result", len(scans),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return scans, nil
}

// CountByUser returns the total number of scans owned by the user.
func (r *ScanReadRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM plant_scans WHERE user_id = $1`

	var count int64
	err := r.db.GetContext(ctx, &count, query, userID)

	logger.Log.Infow("scan query",
		"query", query,
		"args", []any{userID},
		"result", count,
		"error", err,
	)

	return count, err
}

// GetByID returns a scan owned by the given user, or nil when absent.
// Ownership is enforced in the WHERE clause so one user can never read
// another user's scan.
func (r *ScanReadRepository) GetByID(ctx context.Context, userID, scanID uuid.UUID) (*models.ScanDB, error) {
	query := `
		SELECT ` + scanColumns + `
		FROM plant_scans
		WHERE scan_id = $1 AND user_id = $2
	`

	var scan models.ScanDB
	err := r.db.GetContext(ctx, &scan, query, scanID, userID)

	logger.Log.Infow("scan query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{scanID, userID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// GetStats computes the user's aggregate scan statistics. The four aggregates
// are read-only and independent, so they run concurrently.
func (r *ScanReadRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.ScanStats, error) {
	const (
		totalQuery = `SELECT COUNT(*) FROM plant_scans WHERE user_id = $1`
		weekQuery  = `SELECT COUNT(*) FROM plant_scans WHERE user_id = $1 AND created_at >= NOW() - INTERVAL '7 days'`
		avgQuery   = `SELECT COALESCE(ROUND(AVG(accuracy)), 0) FROM plant_scans WHERE user_id = $1`
		// Fallback rows always carry a scientific name, but the column itself
		// is nullable.
		speciesQuery = `SELECT COUNT(DISTINCT scientific_name) FROM plant_scans WHERE user_id = $1 AND scientific_name IS NOT NULL`
	)

	var stats models.ScanStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.GetContext(gctx, &stats.TotalScans, totalQuery, userID)
	})
	g.Go(func() error {
		return r.db.GetContext(gctx, &stats.ThisWeek, weekQuery, userID)
	})
	g.Go(func() error {
		return r.db.GetContext(gctx, &stats.AvgAccuracy, avgQuery, userID)
	})
	g.Go(func() error {
		return r.db.GetContext(gctx, &stats.UniqueSpecies, speciesQuery, userID)
	})

	err := g.Wait()

	logger.Log.Infow("scan stats",
		"user_id", userID,
		"result", stats,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &stats, nil
}
