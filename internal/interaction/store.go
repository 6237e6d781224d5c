package interaction

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamcomm/relaybot/internal/ingress"
)

type Kind string

const (
	// KindRoleSelection asks a multi-role sender which role to send as.
	KindRoleSelection Kind = "role_selection"
	// KindFeedbackConfirmation asks a role-less sender to confirm anonymous feedback.
	KindFeedbackConfirmation Kind = "feedback_confirmation"
)

// Pending is one in-flight interactive workflow: the original message is held
// until the matching callback arrives. Entries are in-memory only; a restart
// drops them, which is acceptable for a short-lived, user-driven workflow.
type Pending struct {
	ID         string
	Kind       Kind
	SenderID   int64
	Candidates []string // candidate roles for role selection
	Event      *ingress.Event
	CreatedAt  time.Time
}

// Store holds pending interactions keyed by correlation id, with at most one
// entry per sender. Consume is single-use and atomic so duplicate callback
// delivery from the transport resolves to exactly one winner.
type Store struct {
	mu       sync.Mutex
	pending  map[string]*Pending
	bySender map[int64]string
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{
		pending:  make(map[string]*Pending),
		bySender: make(map[int64]string),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a pending interaction and returns its correlation id.
// A sender has a single pending state: an earlier entry for the same sender
// is discarded.
func (s *Store) Create(kind Kind, senderID int64, candidates []string, evt *ingress.Event) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.bySender[senderID]; ok {
		delete(s.pending, prev)
	}

	s.pending[id] = &Pending{
		ID:         id,
		Kind:       kind,
		SenderID:   senderID,
		Candidates: append([]string(nil), candidates...),
		Event:      evt,
		CreatedAt:  s.now(),
	}
	s.bySender[senderID] = id

	slog.Debug("Pending interaction created", "correlation_id", id, "kind", kind, "sender", senderID)
	return id
}

// Consume removes and returns the entry for a correlation id. The second call
// for the same id observes "not found"; it never re-delivers.
func (s *Store) Consume(correlationID string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[correlationID]
	if !ok {
		return nil, false
	}
	delete(s.pending, correlationID)
	if s.bySender[p.SenderID] == correlationID {
		delete(s.bySender, p.SenderID)
	}
	return p, true
}

// Cancel discards the entry for a correlation id. Cancelling an unknown id is
// a no-op.
func (s *Store) Cancel(correlationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[correlationID]
	if !ok {
		return
	}
	delete(s.pending, correlationID)
	if s.bySender[p.SenderID] == correlationID {
		delete(s.bySender, p.SenderID)
	}
	slog.Debug("Pending interaction cancelled", "correlation_id", correlationID)
}

// CancelBySender discards the sender's pending entry, if any. Returns true
// when something was discarded.
func (s *Store) CancelBySender(senderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySender[senderID]
	if !ok {
		return false
	}
	delete(s.pending, id)
	delete(s.bySender, senderID)
	return true
}

// Sweep evicts entries older than the TTL and returns the eviction count.
// Abandoned interactions would otherwise grow the store without bound.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	count := 0
	for id, p := range s.pending {
		if p.CreatedAt.Before(cutoff) {
			delete(s.pending, id)
			if s.bySender[p.SenderID] == id {
				delete(s.bySender, p.SenderID)
			}
			count++
		}
	}
	if count > 0 {
		slog.Info("Swept expired interactions", "count", count)
	}
	return count
}

// Len returns the number of pending entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
