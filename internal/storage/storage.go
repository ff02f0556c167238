package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adilbek/plantscan-api/internal/logger"
)

// MaxFileSize is the largest accepted upload, 5 MiB.
const MaxFileSize = 5 << 20

// Error variables
var (
	ErrNoFile          = errors.New("no file provided")
	ErrUnsupportedType = errors.New("only image files are accepted")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// StoredFile describes an accepted upload on disk.
type StoredFile struct {
	Filename string // Unique name under the upload directory
	Path     string // Local path, used for reads and deletion
}

// FileStorage persists uploaded images under a single directory.
type FileStorage struct {
	dir     string
	maxSize int64
}

// New creates a FileStorage rooted at dir, creating the directory if absent.
func New(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FileStorage{dir: dir, maxSize: MaxFileSize}, nil
}

// Dir returns the upload directory path.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Save validates and writes a single uploaded image to the upload directory
// under a unique name, preserving the original extension.
func (s *FileStorage) Save(file multipart.File, header *multipart.FileHeader) (*StoredFile, error) {
	if file == nil || header == nil {
		return nil, ErrNoFile
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedType
	}
	if header.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	name := uniqueName(header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// The declared size is client-controlled, so the copy is bounded too.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	logger.Log.Infow("upload stored", "filename", name, "size", written, "content_type", contentType)

	return &StoredFile{Filename: name, Path: path}, nil
}

// Read returns the contents of a stored file by name.
func (s *FileStorage) Read(filename string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, filepath.Base(filename)))
}

// Remove deletes a stored file by name. Removing an absent file succeeds.
func (s *FileStorage) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// uniqueName combines a timestamp and a random suffix with the original
// extension, mirroring how upload names stay collision-free across requests.
func uniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("image-%d-%09d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
