package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuteRegistry_MuteUnmute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muted.json")
	r := NewMuteRegistry(path)

	assert.False(t, r.IsMuted(42))

	assert.True(t, r.Mute(42))
	assert.True(t, r.IsMuted(42))

	// Idempotent: second mute is a no-op.
	assert.False(t, r.Mute(42))

	assert.True(t, r.Unmute(42))
	assert.False(t, r.IsMuted(42))
	assert.False(t, r.Unmute(42))
}

func TestMuteRegistry_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muted.json")

	r := NewMuteRegistry(path)
	r.Mute(1)
	r.Mute(2)
	r.Unmute(1)

	reloaded := NewMuteRegistry(path)
	assert.False(t, reloaded.IsMuted(1))
	assert.True(t, reloaded.IsMuted(2))
	assert.Equal(t, []int64{2}, reloaded.List())
}

func TestMuteRegistry_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muted.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r := NewMuteRegistry(path)
	assert.Empty(t, r.List())

	// The registry is usable after recovering from the corrupt file.
	assert.True(t, r.Mute(7))
	assert.True(t, NewMuteRegistry(path).IsMuted(7))
}

func TestMuteRegistry_ListSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muted.json")
	r := NewMuteRegistry(path)

	r.Mute(30)
	r.Mute(10)
	r.Mute(20)

	assert.Equal(t, []int64{10, 20, 30}, r.List())
}
