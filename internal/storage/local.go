package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an upload exceeds MaxFileSize
var ErrTooLarge = errors.New("file exceeds maximum size")

// LocalStorage keeps uploaded receipts on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes r under subDir/YYYY/MM with a generated name keeping the
// original extension, and returns the path relative to the storage root
func (s *LocalStorage) Save(r io.Reader, originalName, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	filePath := filepath.Join(dir, uuid.NewString()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// one byte past the limit tells us the source was too large
	n, err := io.Copy(dst, io.LimitReader(r, MaxFileSize()+1))
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if n > MaxFileSize() {
		os.Remove(filePath)
		return "", ErrTooLarge
	}

	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// Open returns a stored file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	return os.Open(s.FullPath(relativePath))
}

// Delete removes a stored file
func (s *LocalStorage) Delete(relativePath string) error {
	return os.Remove(s.FullPath(relativePath))
}

// Exists checks if a stored file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	_, err := os.Stat(s.FullPath(relativePath))
	return err == nil
}

// FullPath resolves a relative path inside the storage root. Paths that try
// to climb out of the root are flattened into it.
func (s *LocalStorage) FullPath(relativePath string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(relativePath))
	return filepath.Join(s.basePath, clean)
}

// ValidContentTypes returns allowed MIME types for receipts
func ValidContentTypes() map[string]bool {
	return map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
	}
}

// MaxFileSize returns the maximum allowed file size (10MB)
func MaxFileSize() int64 {
	return 10 * 1024 * 1024
}

// IsValidContentType checks if the content type is allowed
func IsValidContentType(contentType string) bool {
	return ValidContentTypes()[contentType]
}
