package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/storage"
)

// imageField is the multipart form field carrying the uploaded photo.
const imageField = "image"

// Identifier runs the identification pipeline for a stored upload.
type Identifier interface {
	Identify(ctx context.Context, userID uuid.UUID, imageURL, filename, mimeType string) (*models.ScanDB, error)
}

// UploadReceiver accepts and removes uploaded image files.
type UploadReceiver interface {
	Save(file multipart.File, header *multipart.FileHeader) (*storage.StoredFile, error)
	Remove(filename string) error
}

// IdentifyResponse represents a successful identification.
// swagger:model IdentifyResponse
type IdentifyResponse struct {
	// Success message
	// example: Plant identified successfully
	Message string `json:"message"`

	// Saved scan
	Scan ScanResponse `json:"scan"`
}

// NewIdentifyHandler returns an HTTP handler for the identify pipeline:
// receive the upload, classify it, persist the scan. Classification failures
// degrade to a fallback record, so an error past file receipt is a hard
// fault: the just-uploaded file is deleted and a 500 returned.
// @Summary Identify a plant
// @Description Accepts an image upload, classifies it with the external vision model and stores the scan.
// @Tags plants
// @Accept mpfd
// @Produce json
// @Param image formData file true "Plant photo, max 5 MiB"
// @Success 201 {object} handlers.IdentifyResponse "Saved scan"
// @Failure 400 {object} handlers.ErrorResponse "Missing file, unsupported type or file too large"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Storage or database fault"
// @Router /api/plants/identify [post]
// @Security BearerAuth
func NewIdentifyHandler(svc Identifier, uploads UploadReceiver, userIDGetter UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, ok := userIDGetter(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Unauthorized"})
			return
		}

		file, header, err := r.FormFile(imageField)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Image file not found"})
			return
		}
		defer file.Close()

		stored, err := uploads.Save(file, header)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUnsupportedType):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Only image files are accepted"})
			case errors.Is(err, storage.ErrFileTooLarge):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "File is too large (maximum 5MB)"})
			case errors.Is(err, storage.ErrNoFile):
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Image file not found"})
			default:
				logger.Log.Errorw("failed to store upload", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			}
			return
		}

		imageURL := publicImageURL(r, stored.Filename)
		mimeType := header.Header.Get("Content-Type")

		scan, err := svc.Identify(r.Context(), userID, imageURL, stored.Filename, mimeType)
		if err != nil {
			// Hard fault after file receipt: remove the orphaned upload.
			if removeErr := uploads.Remove(stored.Filename); removeErr != nil {
				logger.Log.Errorw("failed to remove orphaned upload", "filename", stored.Filename, "err", removeErr)
			}
			logger.Log.Errorw("identification failed", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal server error"})
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(IdentifyResponse{
			Message: "Plant identified successfully",
			Scan:    newScanResponse(scan),
		})
	}
}

// publicImageURL builds the externally-resolvable URL of a stored upload
// from the inbound request.
func publicImageURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, filename)
}
