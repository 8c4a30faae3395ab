package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wilddough/internal/server/cache"
	"wilddough/internal/server/config"
	"wilddough/internal/server/storage"
	"wilddough/internal/server/store"
)

// fakeFiles is an in-memory blob store with optional failure injection.
type fakeFiles struct {
	saved     map[string][]byte
	deleteErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{saved: make(map[string][]byte)}
}

func (f *fakeFiles) Save(filename string, data io.Reader) (int64, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.saved[filename] = buf
	return int64(len(buf)), nil
}

func (f *fakeFiles) Delete(filename string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.saved, filename)
	return nil
}

func (f *fakeFiles) Path(filename string) (string, error) {
	if _, ok := f.saved[filename]; !ok {
		return "", fmt.Errorf("file %s not found", filename)
	}
	return "/fake/" + filename, nil
}

func (f *fakeFiles) EnsureDir() error { return nil }

var _ storage.Store = (*fakeFiles)(nil)

func newTestService(t *testing.T) (*Service, *store.Store, *fakeFiles) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "store.json"))
	c := cache.New[[]store.Image](filepath.Join(dir, "cache.json"), 15*time.Minute)
	files := newFakeFiles()
	cfg := &config.Config{MaxUploadSize: 5 * 1024 * 1024}
	return NewService(st, c, files, cfg), st, files
}

func TestService_Upload(t *testing.T) {
	t.Run("stores file and metadata", func(t *testing.T) {
		svc, st, files := newTestService(t)

		img, err := svc.Upload("birthday cake.jpg", bytes.NewReader([]byte("jpeg")), 4, "image/jpeg", "admin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if img.OriginalName != "birthday cake.jpg" {
			t.Errorf("expected original name kept, got %s", img.OriginalName)
		}
		if img.UploadedBy != "admin" {
			t.Errorf("expected uploadedBy admin, got %s", img.UploadedBy)
		}
		if !strings.HasPrefix(img.URL, "/uploads/") || !strings.HasSuffix(img.URL, img.Filename) {
			t.Errorf("expected url under /uploads/ ending in stored name, got %s", img.URL)
		}
		if _, ok := files.saved[img.Filename]; !ok {
			t.Error("expected file bytes stored")
		}
		if st.ImageCount() != 1 {
			t.Errorf("expected 1 record, got %d", st.ImageCount())
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		svc, st, _ := newTestService(t)

		_, err := svc.Upload("big.jpg", bytes.NewReader(nil), 6*1024*1024, "image/jpeg", "admin")
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
		if st.ImageCount() != 0 {
			t.Error("expected no record for rejected upload")
		}
	})

	t.Run("rejects disallowed extension", func(t *testing.T) {
		svc, _, files := newTestService(t)

		_, err := svc.Upload("notes.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf", "admin")
		if !errors.Is(err, ErrBadFileType) {
			t.Errorf("expected ErrBadFileType, got %v", err)
		}
		if len(files.saved) != 0 {
			t.Error("expected nothing stored for rejected upload")
		}
	})
}

func TestService_SaveReference(t *testing.T) {
	t.Run("stores file without a gallery record", func(t *testing.T) {
		svc, st, files := newTestService(t)

		stored, err := svc.SaveReference("my sketch.jpg", bytes.NewReader([]byte("jpeg")), 4, "image/jpeg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := files.saved[stored]; !ok {
			t.Error("expected file bytes stored")
		}
		if st.ImageCount() != 0 {
			t.Error("expected no gallery record for a reference image")
		}
	})

	t.Run("rejects disallowed extension", func(t *testing.T) {
		svc, _, files := newTestService(t)

		_, err := svc.SaveReference("evil.html", bytes.NewReader([]byte("<script>")), 8, "text/html")
		if !errors.Is(err, ErrBadFileType) {
			t.Errorf("expected ErrBadFileType, got %v", err)
		}
		if len(files.saved) != 0 {
			t.Error("expected nothing stored for rejected reference")
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		svc, _, files := newTestService(t)

		_, err := svc.SaveReference("huge.jpg", bytes.NewReader(nil), 6*1024*1024, "image/jpeg")
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
		if len(files.saved) != 0 {
			t.Error("expected nothing stored for rejected reference")
		}
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("removes record and file", func(t *testing.T) {
		svc, st, files := newTestService(t)
		img, _ := svc.Upload("a.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg", "admin")

		deleted, err := svc.Delete(img.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted.ID != img.ID {
			t.Errorf("expected deleted id %d, got %d", img.ID, deleted.ID)
		}
		if st.ImageCount() != 0 {
			t.Error("expected empty registry")
		}
		if _, ok := files.saved[img.Filename]; ok {
			t.Error("expected file removed")
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.Delete(42); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("file removal failure does not revert metadata", func(t *testing.T) {
		svc, st, files := newTestService(t)
		img, _ := svc.Upload("a.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg", "admin")

		files.deleteErr = errors.New("disk on fire")
		if _, err := svc.Delete(img.ID); err != nil {
			t.Fatalf("expected delete to succeed despite file error, got %v", err)
		}
		if st.ImageCount() != 0 {
			t.Error("expected metadata removed even when file removal fails")
		}
	})
}

func TestService_Public(t *testing.T) {
	t.Run("cache hit equals fresh computation", func(t *testing.T) {
		svc, st, _ := newTestService(t)
		svc.Upload("one.jpg", bytes.NewReader([]byte("1")), 1, "image/jpeg", "admin")
		svc.Upload("two.jpg", bytes.NewReader([]byte("2")), 1, "image/jpeg", "admin")

		cached := svc.Public() // warmed by the upload write-through
		fresh := st.PublicImages()

		if len(cached) != len(fresh) {
			t.Fatalf("cache/no-cache mismatch: %d vs %d", len(cached), len(fresh))
		}
		for i := range cached {
			if cached[i].ID != fresh[i].ID {
				t.Errorf("position %d: cached id %d != fresh id %d", i, cached[i].ID, fresh[i].ID)
			}
		}
	})

	t.Run("miss recomputes and repopulates", func(t *testing.T) {
		dir := t.TempDir()
		st := store.New(filepath.Join(dir, "store.json"))
		files := newFakeFiles()
		cfg := &config.Config{MaxUploadSize: 1024}

		// Zero TTL: every entry is born expired, so every read is a miss.
		c := cache.New[[]store.Image](filepath.Join(dir, "cache.json"), 0)
		svc := NewService(st, c, files, cfg)

		svc.Upload("one.jpg", bytes.NewReader([]byte("1")), 1, "image/jpeg", "admin")

		got := svc.Public()
		if len(got) != 1 || got[0].OriginalName != "one.jpg" {
			t.Errorf("expected the uploaded image via cache miss path, got %v", got)
		}
	})

	t.Run("delete refreshes the cached view", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		img, _ := svc.Upload("gone.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg", "admin")
		svc.Upload("kept.jpg", bytes.NewReader([]byte("y")), 1, "image/jpeg", "admin")

		svc.Delete(img.ID)

		for _, got := range svc.Public() {
			if got.ID == img.ID {
				t.Error("expected deleted image to leave the cached view immediately")
			}
		}
	})
}

func TestService_StartupDropsCachedView(t *testing.T) {
	t.Run("warm cache from a previous run cannot serve a stale view", func(t *testing.T) {
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.json")
		files := newFakeFiles()
		cfg := &config.Config{MaxUploadSize: 1024}

		// Previous run: image cached, then deleted from the registry right
		// before a crash that never re-persisted the cache file.
		stale := cache.New[[]store.Image](cachePath, 15*time.Minute)
		stale.Set("gallery", []store.Image{{ID: 1, Filename: "deleted.jpg", IsPublic: true}})

		st := store.New(filepath.Join(dir, "store.json"))
		svc := NewService(st, cache.New[[]store.Image](cachePath, 15*time.Minute), files, cfg)

		if got := svc.Public(); len(got) != 0 {
			t.Errorf("expected empty gallery, got stale cached view %v", got)
		}
	})
}

func TestService_View(t *testing.T) {
	svc, _, _ := newTestService(t)
	img, _ := svc.Upload("v.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg", "admin")

	if got := svc.View(img.Filename); got != 1 {
		t.Errorf("expected 1 view, got %d", got)
	}
	if got := svc.View("missing.jpg"); got != 0 {
		t.Errorf("expected 0 views for unknown filename, got %d", got)
	}
}
