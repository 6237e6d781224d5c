package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcomm/relaybot/internal/ingress"
)

func testEvent(senderID int64) *ingress.Event {
	evt := ingress.NewEvent("test", ingress.KindMessage)
	evt.SenderID = senderID
	evt.Text = "hello"
	return evt
}

func TestStore_ConsumeIsSingleUse(t *testing.T) {
	s := NewStore(0)

	id := s.Create(KindFeedbackConfirmation, 1, nil, testEvent(1))
	require.NotEmpty(t, id)

	p, ok := s.Consume(id)
	require.True(t, ok)
	assert.Equal(t, KindFeedbackConfirmation, p.Kind)
	assert.Equal(t, int64(1), p.SenderID)

	// Duplicate callback delivery observes "not found", never re-delivers.
	_, ok = s.Consume(id)
	assert.False(t, ok)
}

func TestStore_ConsumeUnknownID(t *testing.T) {
	s := NewStore(0)

	_, ok := s.Consume("nonexistent")
	assert.False(t, ok)
}

func TestStore_SinglePendingPerSender(t *testing.T) {
	s := NewStore(0)

	first := s.Create(KindRoleSelection, 1, []string{"writer", "tara_team"}, testEvent(1))
	second := s.Create(KindRoleSelection, 1, []string{"writer", "tara_team"}, testEvent(1))

	// The newer interaction replaces the older one.
	_, ok := s.Consume(first)
	assert.False(t, ok)

	p, ok := s.Consume(second)
	require.True(t, ok)
	assert.Equal(t, []string{"writer", "tara_team"}, p.Candidates)
	assert.Equal(t, 0, s.Len())
}

func TestStore_CancelBySender(t *testing.T) {
	s := NewStore(0)

	id := s.Create(KindFeedbackConfirmation, 9, nil, testEvent(9))

	assert.True(t, s.CancelBySender(9))
	assert.False(t, s.CancelBySender(9))

	_, ok := s.Consume(id)
	assert.False(t, ok)
}

func TestStore_CancelUnknownIsNoop(t *testing.T) {
	s := NewStore(0)
	s.Cancel("nonexistent")
	assert.Equal(t, 0, s.Len())
}

func TestStore_SweepEvictsExpired(t *testing.T) {
	s := NewStore(15 * time.Minute)

	now := time.Now()
	s.now = func() time.Time { return now }
	stale := s.Create(KindRoleSelection, 1, []string{"writer"}, testEvent(1))

	s.now = func() time.Time { return now.Add(20 * time.Minute) }
	fresh := s.Create(KindFeedbackConfirmation, 2, nil, testEvent(2))

	assert.Equal(t, 1, s.Sweep())

	_, ok := s.Consume(stale)
	assert.False(t, ok)

	_, ok = s.Consume(fresh)
	assert.True(t, ok)
}

func TestStore_CorrelationIDsAreUnique(t *testing.T) {
	s := NewStore(0)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := s.Create(KindFeedbackConfirmation, int64(i), nil, testEvent(int64(i)))
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate correlation id %s", id)
		}
		seen[id] = struct{}{}
	}
}
