package landing

import (
	"sync"

	models "mentorx/internal/domain/models/landing"
)

// ImageStore holds background image overrides keyed by image tag, layered
// over the built-in defaults of the current layout.
type ImageStore struct {
	mu        sync.RWMutex
	defaults  map[string]models.ImageConfig
	overrides map[string]string
	dirty     bool
}

// NewImageStore creates a store with no overrides
func NewImageStore(defaults map[string]models.ImageConfig) *ImageStore {
	return &ImageStore{
		defaults:  cloneDefaults(defaults),
		overrides: map[string]string{},
	}
}

// Set overrides a tag's URL and marks the store dirty.
func (s *ImageStore) Set(tag, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[tag] = url
	s.dirty = true
}

// Unset removes a tag's override and marks the store dirty.
func (s *ImageStore) Unset(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, tag)
	s.dirty = true
}

// Resolved returns the effective configuration of a tag: the default
// with its URL replaced by the override, if any.
func (s *ImageStore) Resolved(tag string) (models.ImageConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved(tag)
}

func (s *ImageStore) resolved(tag string) (models.ImageConfig, bool) {
	cfg, hasDefault := s.defaults[tag]
	url, hasOverride := s.overrides[tag]
	if hasOverride {
		cfg.URL = url
	}
	return cfg, hasDefault || hasOverride
}

// All returns every resolved tag, defaults merged with overrides.
func (s *ImageStore) All() map[string]models.ImageConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.ImageConfig, len(s.defaults)+len(s.overrides))
	for tag := range s.defaults {
		out[tag], _ = s.resolved(tag)
	}
	for tag := range s.overrides {
		out[tag], _ = s.resolved(tag)
	}
	return out
}

// Snapshot returns a copy of the explicit overrides only.
func (s *ImageStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneMap(s.overrides)
}

// LoadSnapshot replaces the overrides and clears the dirty flag.
func (s *ImageStore) LoadSnapshot(overrides map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = models.CloneMap(overrides)
	s.dirty = false
}

// SetDefaults swaps the default set, e.g. after a layout change.
func (s *ImageStore) SetDefaults(defaults map[string]models.ImageConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = cloneDefaults(defaults)
}

// Dirty reports unsaved overrides since the last LoadSnapshot.
func (s *ImageStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func cloneDefaults(in map[string]models.ImageConfig) map[string]models.ImageConfig {
	out := make(map[string]models.ImageConfig, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
