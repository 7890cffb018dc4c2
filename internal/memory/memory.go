// Package memory implements an in-process KVStore. Nothing survives the
// process; it backs tests and --ephemeral runs.
package memory

import (
	"sync"

	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

var _ types.KVStore = (*Store)(nil)

// Store is a map-backed KVStore safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value under key; ok is false if the key is absent.
func (s *Store) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Absent keys are ignored.
func (s *Store) Remove(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len reports how many keys are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
