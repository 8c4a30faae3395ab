// Package gallery implements the public gallery surface: authenticated
// uploads and deletes, the cached public listing, and view counting.
package gallery

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"wilddough/internal/server/cache"
	"wilddough/internal/server/config"
	"wilddough/internal/server/storage"
	"wilddough/internal/server/store"
)

// Sentinel errors for the service layer.
var (
	ErrNotFound     = errors.New("image not found")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrBadFileType  = errors.New("file type not allowed")
)

// cacheKey is the single cache entry holding the public gallery view.
const cacheKey = "gallery"

// allowedTypes maps permitted file extensions to their MIME types.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Service owns the gallery flows, combining the snapshot store (metadata),
// the blob store (bytes) and the TTL cache (public view).
type Service struct {
	store *store.Store
	cache *cache.Cache[[]store.Image]
	files storage.Store
	cfg   *config.Config
}

// NewService creates a gallery service. Any cached public view from a
// previous run is dropped: the registry is the source of truth and the entry
// is rebuilt on the first read.
func NewService(st *store.Store, c *cache.Cache[[]store.Image], files storage.Store, cfg *config.Config) *Service {
	c.Delete(cacheKey)
	return &Service{store: st, cache: c, files: files, cfg: cfg}
}

// validate enforces the upload whitelist and size cap shared by every path
// that writes into the publicly served upload directory.
func (s *Service) validate(originalName string, size int64, mimeType string) (string, error) {
	if size > s.cfg.MaxUploadSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	expectedMime, ok := allowedTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrBadFileType, ext)
	}
	// Browsers occasionally send image/jpg or omit the type; only reject a
	// declared type that contradicts the extension.
	if mimeType != "" && mimeType != expectedMime && !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrBadFileType, mimeType)
	}
	return expectedMime, nil
}

// Upload validates and stores an uploaded image, records its metadata, and
// refreshes the cached public view. Returns the created record.
func (s *Service) Upload(originalName string, data io.Reader, size int64, mimeType, uploadedBy string) (store.Image, error) {
	expectedMime, err := s.validate(originalName, size, mimeType)
	if err != nil {
		return store.Image{}, err
	}

	storedName := storage.StoredName(originalName)
	written, err := s.files.Save(storedName, data)
	if err != nil {
		return store.Image{}, fmt.Errorf("store upload: %w", err)
	}

	img := s.store.AddImage(store.ImageMeta{
		Filename:     storedName,
		OriginalName: originalName,
		UploadedBy:   uploadedBy,
		Size:         written,
		MimeType:     expectedMime,
		URL:          "/uploads/" + storedName,
	})

	s.refreshCache()

	slog.Info("image uploaded",
		"id", img.ID,
		"filename", img.Filename,
		"size", written,
		"uploaded_by", uploadedBy,
	)
	return img, nil
}

// SaveReference stores a customer-supplied reference photo under the same
// whitelist and size cap as gallery uploads, without creating a gallery
// record. Returns the stored filename.
func (s *Service) SaveReference(originalName string, data io.Reader, size int64, mimeType string) (string, error) {
	if _, err := s.validate(originalName, size, mimeType); err != nil {
		return "", err
	}

	storedName := storage.StoredName(originalName)
	written, err := s.files.Save(storedName, data)
	if err != nil {
		return "", fmt.Errorf("store reference image: %w", err)
	}

	slog.Info("reference image stored", "filename", storedName, "size", written)
	return storedName, nil
}

// Delete removes an image record and its stored file. The metadata removal
// is authoritative: a file-system failure afterwards is logged and ignored,
// never rolled back.
func (s *Service) Delete(id int64) (store.Image, error) {
	img, err := s.store.RemoveImage(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Image{}, ErrNotFound
		}
		return store.Image{}, err
	}

	if err := s.files.Delete(img.Filename); err != nil {
		slog.Error("failed to delete image file, metadata already removed",
			"id", id, "filename", img.Filename, "error", err)
	}

	s.refreshCache()

	slog.Info("image deleted", "id", id, "filename", img.Filename)
	return img, nil
}

// Public returns the public gallery view through the read-through cache.
// Hit, miss, or disabled cache must produce the same result.
func (s *Service) Public() []store.Image {
	if images, ok := s.cache.Get(cacheKey); ok {
		return images
	}
	images := s.store.PublicImages()
	s.cache.Set(cacheKey, images)
	return images
}

// View increments the view counter for a stored filename and returns the new
// count; 0 for an unknown filename.
func (s *Service) View(filename string) int {
	return s.store.IncrementViews(filename)
}

// refreshCache recomputes the cached public view after a mutation
// (write-through) so readers never see a stale entry.
func (s *Service) refreshCache() {
	s.cache.Set(cacheKey, s.store.PublicImages())
}
