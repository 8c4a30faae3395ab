package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for image blob storage backends.
// This allows swapping filesystem for S3 or other backends later.
type Store interface {
	Save(filename string, data io.Reader) (int64, error)
	Delete(filename string) error
	Path(filename string) (string, error)
	EnsureDir() error
}

// FileSystemStore keeps uploaded gallery images on the local filesystem.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// EnsureDir creates the upload directory if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", fs.basePath, err)
	}
	return nil
}

// Save writes data to a file with the given stored name.
// Returns the number of bytes written.
func (fs *FileSystemStore) Save(filename string, data io.Reader) (int64, error) {
	filePath := filepath.Join(fs.basePath, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return n, nil
}

// Path returns the absolute path to a stored image.
// Returns an error if the file does not exist.
func (fs *FileSystemStore) Path(filename string) (string, error) {
	filePath := filepath.Join(fs.basePath, filename)

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file %s not found", filename)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	return filePath, nil
}

// Delete removes a stored image. A missing file is not an error.
func (fs *FileSystemStore) Delete(filename string) error {
	filePath := filepath.Join(fs.basePath, filename)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// StoredName builds a collision-resistant on-disk name from an uploaded
// file's original name: unix-ms timestamp, a random fragment, and the
// sanitized original stem, keeping the extension.
func StoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	stem := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))

	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, stem)
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		sanitized = "image"
	}
	if len(sanitized) > 60 {
		sanitized = sanitized[:60]
	}

	fragment := uuid.NewString()[:8]
	return fmt.Sprintf("%d-%s-%s%s", time.Now().UnixMilli(), fragment, sanitized, ext)
}
