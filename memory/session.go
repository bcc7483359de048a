// Package memory provides an in-process implementation of
// sitebot.SessionStore.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/ohmanagement/sitebot"
)

// Ensure SessionStore implements sitebot.SessionStore at compile time.
var _ sitebot.SessionStore = (*SessionStore)(nil)

// SessionStore keeps session entries in a map. The zero value is ready
// to use.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewSessionStore returns a store seeded with a copy of entries.
func NewSessionStore(entries map[string]string) *SessionStore {
	return &SessionStore{entries: maps.Clone(entries)}
}

// Get returns the value stored under key.
func (s *SessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *SessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	s.entries[key] = value
	return nil
}

// Clear removes every entry.
func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}
