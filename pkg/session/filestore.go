package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists session state as a single JSON file. It reads the
// file once on open and rewrites it in full on every mutation, so the
// on-disk copy always matches memory.
type FileStore struct {
	path string

	mu sync.RWMutex
	m  map[string]string
}

// NewFileStore opens (or creates) the store backed by path. A missing
// file yields an empty store. A file that exists but does not parse is
// treated the same way: the stale content is discarded rather than
// blocking sign-in.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, m: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.m); err != nil {
		s.m = make(map[string]string)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.m[key]
	s.m[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.m[key] = prev
		} else {
			delete(s.m, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.m[key]
	if !had {
		return nil
	}
	delete(s.m, key)
	if err := s.flush(); err != nil {
		s.m[key] = prev
		return err
	}
	return nil
}

// flush writes the map to disk via a rename so a crash mid-write never
// leaves a truncated file. Caller holds s.mu.
func (s *FileStore) flush() error {
	raw, err := json.Marshal(s.m)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Path returns the backing file's path.
func (s *FileStore) Path() string {
	return filepath.Clean(s.path)
}
