// Package landing implements the landing page editor: field and image
// stores, the editable-surface controller, persistence and editor sessions.
package landing

import (
	"sync"

	models "mentorx/internal/domain/models/landing"
)

// FieldStore maps field identifiers to the text shown in each tagged
// region of a page. Values are not validated here.
type FieldStore struct {
	mu     sync.RWMutex
	values map[string]string
	dirty  bool
}

// NewFieldStore creates an empty, clean store
func NewFieldStore() *FieldStore {
	return &FieldStore{values: map[string]string{}}
}

// Get returns the stored value of a field.
func (s *FieldStore) Get(fieldID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[fieldID]
	return v, ok
}

// Set stores a value and marks the store dirty, even when the value is
// unchanged.
func (s *FieldStore) Set(fieldID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[fieldID] = value
	s.dirty = true
}

// MarkDirty flags unsaved changes without touching any value.
func (s *FieldStore) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// Snapshot returns a copy of every entry.
func (s *FieldStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneMap(s.values)
}

// LoadSnapshot replaces all entries and clears the dirty flag.
func (s *FieldStore) LoadSnapshot(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = models.CloneMap(values)
	s.dirty = false
}

// Dirty reports unsaved changes since the last LoadSnapshot.
func (s *FieldStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}
