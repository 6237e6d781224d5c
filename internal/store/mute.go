package store

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/natefinch/atomic"
)

// MuteRegistry is the durable set of muted member ids. Every inbound message
// passes through it before any routing happens. The whole set is rewritten on
// each mutation; the mutex doubles as the single ordered writer.
type MuteRegistry struct {
	path  string
	muted map[int64]struct{}
	mu    sync.RWMutex
}

func NewMuteRegistry(path string) *MuteRegistry {
	r := &MuteRegistry{
		path:  path,
		muted: make(map[int64]struct{}),
	}
	r.load()
	return r
}

// load reconstructs the set from disk. A missing, unreadable, or corrupt file
// starts the registry empty with a warning; it is never fatal.
func (r *MuteRegistry) load() {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		slog.Info("Mute set file does not exist, starting empty", "path", r.path)
		return
	}
	if err != nil {
		slog.Warn("Failed to read mute set, starting empty", "path", r.path, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("Failed to parse mute set, starting empty", "path", r.path, "error", err)
		return
	}
	for _, id := range ids {
		r.muted[id] = struct{}{}
	}
	slog.Info("Loaded mute set", "path", r.path, "count", len(r.muted))
}

// save rewrites the whole set. Caller holds the write lock.
func (r *MuteRegistry) save() error {
	ids := make([]int64, 0, len(r.muted))
	for id := range r.muted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(r.path, bytes.NewReader(data))
}

// IsMuted reports whether a member is muted.
func (r *MuteRegistry) IsMuted(memberID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.muted[memberID]
	return ok
}

// Mute adds a member to the set. Idempotent; returns true when the set
// changed. Flush failure is logged, the in-memory set stays authoritative.
func (r *MuteRegistry) Mute(memberID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.muted[memberID]; ok {
		return false
	}
	r.muted[memberID] = struct{}{}
	if err := r.save(); err != nil {
		slog.Error("Failed to persist mute set", "path", r.path, "error", err)
	}
	slog.Info("Member muted", "member_id", memberID)
	return true
}

// Unmute removes a member from the set. Idempotent; returns true when the
// set changed.
func (r *MuteRegistry) Unmute(memberID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.muted[memberID]; !ok {
		return false
	}
	delete(r.muted, memberID)
	if err := r.save(); err != nil {
		slog.Error("Failed to persist mute set", "path", r.path, "error", err)
	}
	slog.Info("Member unmuted", "member_id", memberID)
	return true
}

// List returns the muted member ids, sorted.
func (r *MuteRegistry) List() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.muted))
	for id := range r.muted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
