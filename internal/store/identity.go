package store

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// IdentityStore is the durable lower-cased handle -> member id mapping.
// It is refreshed opportunistically on every inbound message so that
// handle-based addressing stays current. Records are never deleted during
// normal operation.
type IdentityStore struct {
	path    string
	handles map[string]int64
	mu      sync.RWMutex
}

func NewIdentityStore(path string) *IdentityStore {
	s := &IdentityStore{
		path:    path,
		handles: make(map[string]int64),
	}
	s.load()
	return s
}

func (s *IdentityStore) load() {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.Info("Identity map file does not exist, starting empty", "path", s.path)
		return
	}
	if err != nil {
		slog.Warn("Failed to read identity map, starting empty", "path", s.path, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var handles map[string]int64
	if err := json.Unmarshal(data, &handles); err != nil {
		slog.Warn("Failed to parse identity map, starting empty", "path", s.path, "error", err)
		return
	}
	for handle, id := range handles {
		s.handles[normalizeHandle(handle)] = id
	}
	slog.Info("Loaded identity map", "path", s.path, "count", len(s.handles))
}

// save rewrites the whole mapping. Caller holds the write lock.
func (s *IdentityStore) save() error {
	data, err := json.MarshalIndent(s.handles, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(data))
}

// Resolve looks up a member id by handle, case-insensitively.
func (s *IdentityStore) Resolve(handle string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.handles[normalizeHandle(handle)]
	return id, ok
}

// RecordSighting updates the mapping only when the handle is absent or points
// at a different id, then flushes. Returns true when the mapping changed.
// Flush failure is logged, not fatal; the in-memory mapping remains
// authoritative for the process lifetime.
func (s *IdentityStore) RecordSighting(handle string, memberID int64) bool {
	key := normalizeHandle(handle)
	if key == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.handles[key]; ok && current == memberID {
		return false
	}
	s.handles[key] = memberID
	if err := s.save(); err != nil {
		slog.Error("Failed to persist identity map", "path", s.path, "error", err)
	}
	slog.Debug("Identity recorded", "handle", key, "member_id", memberID)
	return true
}

// List returns a copy of the mapping.
func (s *IdentityStore) List() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.handles))
	for handle, id := range s.handles {
		out[handle] = id
	}
	return out
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(handle, "@")))
}
