package landing

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentorx/internal/domain"
	models "mentorx/internal/domain/models/landing"
)

// SessionManager keeps the open editor sessions of this process. Idle
// sessions are closed lazily whenever the manager is accessed.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionManager creates a manager; idle <= 0 disables expiry.
func NewSessionManager(idle time.Duration, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
		logger:   logger,
	}
}

// NewID returns a fresh session id.
func (m *SessionManager) NewID() string {
	return uuid.NewString()
}

// Add registers an open session.
func (m *SessionManager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked()
	s.touch(m.now())
	m.sessions[s.ID()] = s
}

// Get returns a live session and refreshes its idle timer.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("editor session %s: %w", id, domain.ErrNotFound)
	}
	if s.Closed() {
		delete(m.sessions, id)
		return nil, fmt.Errorf("editor session %s: %w", id, domain.ErrNotFound)
	}
	s.touch(m.now())
	return s, nil
}

// Remove closes and forgets a session. Unknown ids are ignored.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Close()
		delete(m.sessions, id)
	}
}

// Len returns the number of tracked sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every session, used on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.Dirty() {
			m.logger.Warn("closing editor session with unsaved changes", "session_id", id)
		}
		s.Close()
		delete(m.sessions, id)
	}
}

// expireLocked closes sessions idle for longer than the limit. Caller
// holds mu.
func (m *SessionManager) expireLocked() {
	if m.idle <= 0 {
		return
	}
	cutoff := m.now().Add(-m.idle)
	for id, s := range m.sessions {
		if s.State() == models.StateSaving || !s.idleSince().Before(cutoff) {
			continue
		}
		m.logger.Info("editor session expired",
			"session_id", id,
			"document_id", s.DocumentID(),
			"dirty", s.Dirty(),
		)
		s.Close()
		delete(m.sessions, id)
	}
}
