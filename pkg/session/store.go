// Package session keeps a signed-in principal across restarts of a
// dashboard client. A Manager owns the sign-in state machine and
// persists the principal and its normalized role through a Store.
package session

import "sync"

// Keys under which the manager persists session data. The values match
// what the legacy dashboard wrote, so an existing session file restores
// cleanly.
const (
	// KeyCurrentUser holds the signed-in principal as a JSON blob.
	KeyCurrentUser = "currentUser"

	// KeyUserRole holds the normalized role string ("admin" or
	// "inspector") on its own, for cheap role checks.
	KeyUserRole = "userRole"
)

// Store is a small string key/value persistence layer for session
// state. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool)

	// Set writes key to value, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// MemStore is an in-memory Store, mainly for tests.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
