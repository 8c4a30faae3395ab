package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemStore_Save(t *testing.T) {
	t.Run("saves file to disk", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		data := bytes.NewReader([]byte("jpeg bytes"))
		n, err := store.Save("cake.jpg", data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if n != 10 {
			t.Errorf("expected 10 bytes written, got %d", n)
		}

		content, err := os.ReadFile(filepath.Join(dir, "cake.jpg"))
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "jpeg bytes" {
			t.Errorf("expected 'jpeg bytes', got %q", content)
		}
	})
}

func TestFileSystemStore_Path(t *testing.T) {
	t.Run("returns path for existing file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		filePath := filepath.Join(dir, "cake.jpg")
		os.WriteFile(filePath, []byte("data"), 0644)

		path, err := store.Path("cake.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if path != filePath {
			t.Errorf("expected %s, got %s", filePath, path)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if _, err := store.Path("nonexistent.jpg"); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})
}

func TestFileSystemStore_Delete(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		filePath := filepath.Join(dir, "del.jpg")
		os.WriteFile(filePath, []byte("data"), 0644)

		if err := store.Delete("del.jpg"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(filePath); !os.IsNotExist(err) {
			t.Error("expected file to be deleted")
		}
	})

	t.Run("no error for missing file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if err := store.Delete("nonexistent.jpg"); err != nil {
			t.Errorf("expected no error for missing file, got: %v", err)
		}
	})
}

func TestFileSystemStore_EnsureDir(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "uploads")
		store := NewFileSystemStore(dir)

		if err := store.EnsureDir(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected a directory")
		}
	})
}

func TestStoredName(t *testing.T) {
	t.Run("keeps extension, strips unsafe characters", func(t *testing.T) {
		name := StoredName("../../etc/pass wd & co.JPG")
		if !strings.HasSuffix(name, ".jpg") {
			t.Errorf("expected .jpg suffix, got %s", name)
		}
		if strings.ContainsAny(name, "/\\ &") {
			t.Errorf("expected sanitized name, got %s", name)
		}
	})

	t.Run("two uploads of the same name collide never", func(t *testing.T) {
		a := StoredName("cake.jpg")
		b := StoredName("cake.jpg")
		if a == b {
			t.Errorf("expected distinct stored names, got %s twice", a)
		}
	})

	t.Run("empty stem falls back to a default", func(t *testing.T) {
		name := StoredName("....jpg")
		if !strings.Contains(name, "image") {
			t.Errorf("expected fallback stem, got %s", name)
		}
	})
}
