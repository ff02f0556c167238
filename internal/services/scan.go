package services

import (
	"context"
	"errors"
	"path"

	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
)

// ErrScanNotFound is returned when a scan is absent or owned by another user.
var ErrScanNotFound = errors.New("scan not found")

const (
	defaultPage  = 1
	defaultLimit = 10
)

// PlantClassifier produces a plant record for an image. It never fails:
// a failed classification yields the fallback record instead.
type PlantClassifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (*models.PlantInfo, int)
}

// ScanReader defines read operations for plant scans.
type ScanReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ScanDB, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	GetByID(ctx context.Context, userID, scanID uuid.UUID) (*models.ScanDB, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.ScanStats, error)
}

// ScanWriter defines write operations for plant scans.
type ScanWriter interface {
	Save(ctx context.Context, userID uuid.UUID, imageURL string, info *models.PlantInfo, accuracy int) (*models.ScanDB, error)
	Delete(ctx context.Context, userID, scanID uuid.UUID) error
}

// FileStore reads and removes stored upload files by name.
type FileStore interface {
	Read(filename string) ([]byte, error)
	Remove(filename string) error
}

// ScanService runs the identification pipeline and manages scan history.
type ScanService struct {
	classifier PlantClassifier
	reader     ScanReader
	writer     ScanWriter
	files      FileStore
}

// NewScanService creates a new ScanService instance.
func NewScanService(classifier PlantClassifier, reader ScanReader, writer ScanWriter, files FileStore) *ScanService {
	return &ScanService{
		classifier: classifier,
		reader:     reader,
		writer:     writer,
		files:      files,
	}
}

// Identify classifies a stored upload and persists the result. Classification
// itself cannot fail, so an error here is a hard fault (storage or database)
// and the caller is expected to clean up the uploaded file.
func (svc *ScanService) Identify(ctx context.Context, userID uuid.UUID, imageURL, filename, mimeType string) (*models.ScanDB, error) {
	image, err := svc.files.Read(filename)
	if err != nil {
		logger.Log.Errorw("failed to read stored upload", "filename", filename, "err", err)
		return nil, err
	}

	info, accuracy := svc.classifier.Classify(ctx, image, mimeType)

	scan, err := svc.writer.Save(ctx, userID, imageURL, info, accuracy)
	if err != nil {
		logger.Log.Errorw("failed to save scan", "user_id", userID, "err", err)
		return nil, err
	}

	return scan, nil
}

// List returns one page of the user's scans, newest first, with pagination
// metadata. Page and limit are coerced to positive values with defaults of
// 1 and 10.
func (svc *ScanService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.ScanDB, *models.Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	offset := (page - 1) * limit

	scans, err := svc.reader.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		logger.Log.Errorw("failed to list scans", "user_id", userID, "err", err)
		return nil, nil, err
	}

	total, err := svc.reader.CountByUser(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to count scans", "user_id", userID, "err", err)
		return nil, nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	pagination := &models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalScans:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}

	return scans, pagination, nil
}

// Get returns a single scan owned by the user.
func (svc *ScanService) Get(ctx context.Context, userID, scanID uuid.UUID) (*models.ScanDB, error) {
	scan, err := svc.reader.GetByID(ctx, userID, scanID)
	if err != nil {
		logger.Log.Errorw("failed to get scan", "scan_id", scanID, "err", err)
		return nil, err
	}
	if scan == nil {
		return nil, ErrScanNotFound
	}
	return scan, nil
}

// Delete removes a scan owned by the user along with its stored image.
// Removing an already-absent image file still succeeds.
func (svc *ScanService) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	scan, err := svc.reader.GetByID(ctx, userID, scanID)
	if err != nil {
		logger.Log.Errorw("failed to get scan", "scan_id", scanID, "err", err)
		return err
	}
	if scan == nil {
		return ErrScanNotFound
	}

	if err := svc.writer.Delete(ctx, userID, scanID); err != nil {
		logger.Log.Errorw("failed to delete scan", "scan_id", scanID, "err", err)
		return err
	}

	if err := svc.files.Remove(path.Base(scan.ImageURL)); err != nil {
		logger.Log.Errorw("failed to remove scan image", "scan_id", scanID, "err", err)
		return err
	}

	return nil
}

// Stats returns the user's aggregate scan statistics.
func (svc *ScanService) Stats(ctx context.Context, userID uuid.UUID) (*models.ScanStats, error) {
	stats, err := svc.reader.GetStats(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get stats", "user_id", userID, "err", err)
		return nil, err
	}
	return stats, nil
}
