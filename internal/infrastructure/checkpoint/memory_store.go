package checkpoint

import (
	"context"
	"sync"
	"time"
)

// MemoryStore backs tests and local runs without Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]time.Time)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.values[key]
	return at, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = at
	return nil
}
