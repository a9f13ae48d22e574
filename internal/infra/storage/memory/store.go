// Package memory implements an in-memory storage adapter for tests and
// ephemeral use.
package memory

import (
	"context"
	"sync"

	"rollbook/pkg/register"
)

// Compile-time contract assertion.
var _ register.StorageAdapter = (*Store)(nil)

// Store keeps blobs in process memory.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty in-memory adapter.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get returns a copy of the stored blob, reporting absence via ok.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

// Set stores a copy of the blob under key.
func (s *Store) Set(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), payload...)
	return nil
}

// Remove deletes the blob; removing an absent key is a no-op.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
