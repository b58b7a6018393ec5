package session

import (
	"context"
	"sync"
)

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	pills map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pills: make(map[string]string)}
}

// Set records the pill name for a session.
func (s *MemoryStore) Set(_ context.Context, sessionID, pillName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pills[sessionID] = pillName
	return nil
}

// Get returns the pill name for a session.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.pills[sessionID]
	return name, ok, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
