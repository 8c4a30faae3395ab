package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sentinel errors surfaced by store operations.
var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
)

// Retention bounds for the analytics log. The in-memory window is larger than
// the tail written to disk; the persisted tail is applied at serialization time.
const (
	maxEventsInMemory  = 10000
	maxEventsPersisted = 5000
)

// Store owns the in-memory collections (gallery images, analytics events,
// orders, order id counter) and mirrors them to a single JSON snapshot file.
// Every mutating method persists synchronously under the lock before
// returning, so writes never overlap and data loss on crash is bounded to the
// in-flight request. Persist failures are logged and swallowed: the in-memory
// state stays authoritative for the life of the process.
type Store struct {
	mu sync.Mutex

	path string
	now  func() time.Time

	images   []Image
	events   []Event
	orders   []Order
	orderSeq int64

	// lastID guards time-based image/event ids against clock ties.
	lastID int64
}

// New creates a store backed by the snapshot file at path. State is empty
// until Load is called.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Load reads the snapshot file if present. A missing, unreadable, or corrupt
// file is logged and replaced by empty collections so the process always
// starts in a well-defined state.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to read snapshot, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Error("failed to parse snapshot, starting empty", "path", s.path, "error", err)
		return
	}

	s.images = snap.Images
	s.events = snap.Analytics
	s.orders = snap.Orders
	s.orderSeq = snap.OrderIDCounter

	slog.Info("snapshot loaded",
		"images", len(s.images),
		"events", len(s.events),
		"orders", len(s.orders),
		"order_counter", s.orderSeq,
	)
}

// Flush persists the current state. Called on graceful shutdown.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSnapshot()
}

// persist writes the snapshot and swallows failures. Callers must hold mu.
func (s *Store) persist() {
	if err := s.writeSnapshot(); err != nil {
		slog.Error("snapshot write failed, in-memory state remains authoritative",
			"path", s.path, "error", err)
	}
}

func (s *Store) writeSnapshot() error {
	events := s.events
	if len(events) > maxEventsPersisted {
		events = events[len(events)-maxEventsPersisted:]
	}

	snap := snapshot{
		Images:         s.images,
		Analytics:      events,
		Orders:         s.orders,
		OrderIDCounter: s.orderSeq,
		LastUpdated:    s.now(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}

// nextID allocates a time-based id that is strictly monotonic even when
// multiple allocations land in the same millisecond. Callers must hold mu.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
