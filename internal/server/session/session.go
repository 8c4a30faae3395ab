// Package session tracks which opaque session ids currently represent a
// valid authenticated admin. Sessions live in memory only; a restart logs
// every admin out.
package session

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"
)

// Session records one authenticated admin login.
type Session struct {
	Username  string
	LoginTime time.Time
	IP        string
	UserAgent string
}

// Manager is the in-memory session map with age-based expiry. The max age
// must match the expiry claim of the issued credential; both derive from the
// same configured TTL.
type Manager struct {
	mu sync.Mutex

	maxAge   time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewManager creates a session manager whose sessions expire after maxAge.
func NewManager(maxAge time.Duration) *Manager {
	return &Manager{
		maxAge:   maxAge,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Create registers a new session and returns its opaque id.
func (m *Manager) Create(username, ip, userAgent string) (string, error) {
	id, err := generateToken(32)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = Session{
		Username:  username,
		LoginTime: m.now(),
		IP:        ip,
		UserAgent: userAgent,
	}
	return id, nil
}

// IsValid reports whether the session exists and is younger than the max age.
// Stale sessions are evicted on the spot rather than waiting for the sweep.
func (m *Manager) IsValid(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	if m.now().Sub(s.LoginTime) > m.maxAge {
		delete(m.sessions, id)
		return false
	}
	return true
}

// Revoke deletes a session. Used at logout; revoking an unknown id is a no-op.
func (m *Manager) Revoke(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Sweep removes every session older than the max age.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.maxAge)
	removed := 0
	for id, s := range m.sessions {
		if s.LoginTime.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("session sweep complete", "removed", removed, "active", len(m.sessions))
	}
}

// Count returns the number of sessions currently held, stale ones included.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// generateToken produces a cryptographically secure, URL-safe random string.
func generateToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("crypto/rand failure: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
