package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ohmanagement/sitebot"
)

// Ensure SessionStore implements sitebot.SessionStore at compile time.
var _ sitebot.SessionStore = (*SessionStore)(nil)

// SessionStore keeps session entries as a JSON object in one file. It is
// used by the terminal chat client to survive restarts.
type SessionStore struct {
	mu   sync.Mutex
	path string
}

// NewSessionStore returns a store backed by the file at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// NewSessionStoreDir returns a store for session id backed by its own file
// in dir. The id must be a plain file name.
func NewSessionStoreDir(dir, id string) (*SessionStore, error) {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return nil, sitebot.Errorf(sitebot.EINVALID, "invalid session id %q", id)
	}
	return NewSessionStore(filepath.Join(dir, id+".json")), nil
}

// Get returns the value stored under key.
func (s *SessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file.
func (s *SessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.write(entries)
}

// Clear removes the session file.
func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "clear session %s: %v", s.path, err)
	}
	return nil
}

// read returns the stored entries. A missing file reads as empty.
func (s *SessionStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "read session %s: %v", s.path, err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, sitebot.Errorf(sitebot.EPARSE, "decode session %s: %v", s.path, err)
	}
	return entries, nil
}

func (s *SessionStore) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return sitebot.Errorf(sitebot.EINTERNAL, "marshal session: %v", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "write session %s: %v", s.path, err)
	}
	return nil
}
