package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilbek/plantscan-api/internal/models"
	"github.com/adilbek/plantscan-api/internal/storage"
)

// identifyRequest builds a multipart request with one "image" part.
func identifyRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="plant.jpg"`)
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/plants/identify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIdentifyHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewMockIdentifier(ctrl)
	uploads := NewMockUploadReceiver(ctrl)

	userID := uuid.New()
	scanID := uuid.New()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	uploads.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(&storage.StoredFile{Filename: "image-1.jpg", Path: "uploads/image-1.jpg"}, nil)

	svc.EXPECT().
		Identify(gomock.Any(), userID, "http://example.com/uploads/image-1.jpg", "image-1.jpg", "image/jpeg").
		Return(&models.ScanDB{
			ScanID:         scanID,
			UserID:         userID,
			ImageURL:       "http://example.com/uploads/image-1.jpg",
			CommonName:     "Monstera",
			ScientificName: "Monstera deliciosa",
			Accuracy:       95,
			CreatedAt:      createdAt,
		}, nil)

	req := identifyRequest(t, "image/jpeg", []byte("jpeg bytes"))
	rr := httptest.NewRecorder()

	NewIdentifyHandler(svc, uploads, userIDGetterFor(userID)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{
		"message": "Plant identified successfully",
		"scan": {
			"id": "`+scanID.String()+`",
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
	}`, rr.Body.String())
}

func TestIdentifyHandler_Unauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := identifyRequest(t, "image/jpeg", []byte("jpeg bytes"))
	rr := httptest.NewRecorder()

	NewIdentifyHandler(NewMockIdentifier(ctrl), NewMockUploadReceiver(ctrl), noUserID).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
}

func TestIdentifyHandler_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/api/plants/identify", nil)
	rr := httptest.NewRecorder()

	NewIdentifyHandler(NewMockIdentifier(ctrl), NewMockUploadReceiver(ctrl), userIDGetterFor(uuid.New())).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Image file not found"}`, rr.Body.String())
}

func TestIdentifyHandler_StorageRejections(t *testing.T) {
	tests := []struct {
		name     string
		saveErr  error
		wantBody string
	}{
		{name: "not an image", saveErr: storage.ErrUnsupportedType, wantBody: `{"error":"Only image files are accepted"}`},
		{name: "too large", saveErr: storage.ErrFileTooLarge, wantBody: `{"error":"File is too large (maximum 5MB)"}`},
		{name: "no file", saveErr: storage.ErrNoFile, wantBody: `{"error":"Image file not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uploads := NewMockUploadReceiver(ctrl)
			uploads.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, tt.saveErr)

			req := identifyRequest(t, "text/plain", []byte("payload"))
			rr := httptest.NewRecorder()

			NewIdentifyHandler(NewMockIdentifier(ctrl), uploads, userIDGetterFor(uuid.New())).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestIdentifyHandler_ServiceFaultRemovesUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewMockIdentifier(ctrl)
	uploads := NewMockUploadReceiver(ctrl)
	userID := uuid.New()

	uploads.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(&storage.StoredFile{Filename: "image-9.jpg", Path: "uploads/image-9.jpg"}, nil)
	svc.EXPECT().
		Identify(gomock.Any(), userID, "http://example.com/uploads/image-9.jpg", "image-9.jpg", "image/jpeg").
		Return(nil, errors.New("insert failed"))
	// The orphaned upload must be cleaned up.
	uploads.EXPECT().Remove("image-9.jpg").Return(nil)

	req := identifyRequest(t, "image/jpeg", []byte("jpeg bytes"))
	rr := httptest.NewRecorder()

	NewIdentifyHandler(svc, uploads, userIDGetterFor(userID)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}
