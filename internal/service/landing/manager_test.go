package landing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain"
)

func TestSessionManager_IdleExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m := NewSessionManager(30*time.Minute, testLogger())
	m.now = func() time.Time { return now }

	s := newTestSession(t, newFakePageRepo())
	require.NoError(t, s.Activate())
	m.Add(s)

	now = now.Add(20 * time.Minute)
	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	// Access refreshed the idle timer
	now = now.Add(20 * time.Minute)
	_, err = m.Get(s.ID())
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, s.Closed())
	assert.Equal(t, 0, m.Len())
}

func TestSessionManager_NoExpiryWhenDisabled(t *testing.T) {
	now := time.Now()
	m := NewSessionManager(0, testLogger())
	m.now = func() time.Time { return now }

	s := newTestSession(t, newFakePageRepo())
	m.Add(s)

	now = now.Add(24 * time.Hour)
	_, err := m.Get(s.ID())
	assert.NoError(t, err)
}

func TestSessionManager_Remove(t *testing.T) {
	m := NewSessionManager(time.Hour, testLogger())
	s := newTestSession(t, newFakePageRepo())
	m.Add(s)

	m.Remove(s.ID())
	m.Remove("unknown")

	_, err := m.Get(s.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, s.Closed())
}

func TestSessionManager_ClosedSessionsAreDropped(t *testing.T) {
	m := NewSessionManager(time.Hour, testLogger())
	s := newTestSession(t, newFakePageRepo())
	m.Add(s)
	s.Close()

	_, err := m.Get(s.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestSessionManager_NewIDIsUnique(t *testing.T) {
	m := NewSessionManager(time.Hour, testLogger())
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := m.NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSessionManager_CloseAll(t *testing.T) {
	m := NewSessionManager(time.Hour, testLogger())
	a := newTestSession(t, newFakePageRepo())
	m.Add(a)

	m.CloseAll()
	assert.True(t, a.Closed())
	assert.Equal(t, 0, m.Len())
}
