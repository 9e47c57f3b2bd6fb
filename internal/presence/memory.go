package presence

import (
	"context"
	"sync"
)

// MemoryStore is the process-local PresenceStore implementation.
// Default for single-process deployments and tests; presence state dies with
// the process, which matches the registry's own lifetime.
type MemoryStore struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

// NewMemoryStore creates an in-memory presence store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{online: make(map[string]struct{})}
}

func (s *MemoryStore) SetOnline(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID] = struct{}{}
	return nil
}

func (s *MemoryStore) SetOffline(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.online, userID)
	return nil
}

func (s *MemoryStore) IsOnline(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[userID]
	return ok, nil
}
