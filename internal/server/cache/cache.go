// Package cache provides a read-through TTL cache persisted to its own JSON
// file. The cache is purely a performance layer: every cached artifact is
// reconstructible from its source of truth on a miss, so persistence failures
// are logged and swallowed.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry[T any] struct {
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Expires   time.Time `json:"expires"`
}

// Cache is a key-value map with per-entry expiry. Expired entries are evicted
// lazily on read and proactively by Sweep.
type Cache[T any] struct {
	mu sync.Mutex

	path    string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[T]
}

// New creates a cache backed by the JSON file at path. Existing entries are
// loaded so warm state survives a restart; a missing or corrupt file starts
// the cache empty.
func New[T any](path string, ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		path:    path,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
	c.load()
	return c
}

func (c *Cache[T]) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to read cache file, starting empty", "path", c.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Error("failed to parse cache file, starting empty", "path", c.path, "error", err)
		c.entries = make(map[string]entry[T])
	}
}

// Get returns the cached value for key if it has not expired. An expired
// entry is deleted and reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if !c.now().Before(e.Expires) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.Data, true
}

// Set stores value under key with a fresh expiry and persists the whole map.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry[T]{
		Data:      value,
		Timestamp: now,
		Expires:   now.Add(c.ttl),
	}
	c.persist()
}

// Delete removes an entry and persists.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.persist()
	}
}

// Sweep removes every expired entry, persisting once at the end. Bounds
// growth from keys that are written but never read again.
func (c *Cache[T]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.Expires) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.persist()
		slog.Info("cache sweep complete", "removed", removed, "remaining", len(c.entries))
	}
}

// Len reports the number of live entries, counting not-yet-evicted expired ones.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// persist writes the cache file. Callers must hold mu.
func (c *Cache[T]) persist() {
	data, err := json.Marshal(c.entries)
	if err != nil {
		slog.Error("failed to marshal cache", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		slog.Error("failed to create cache directory", "path", c.path, "error", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		slog.Error("failed to write cache file", "path", c.path, "error", err)
	}
}
