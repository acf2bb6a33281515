package memory

import (
	"context"
	"sync"
)

// Store is a process-local KV. Nothing survives a restart.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

func New() *Store {
	return &Store{values: make(map[string]string)}
}

// NewWith returns a store preloaded with values, mainly for tests and demos.
func NewWith(values map[string]string) *Store {
	s := New()
	for key, value := range values {
		s.values[key] = value
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range entries {
		s.values[key] = value
	}
	s.writes++
	return nil
}

// Writes reports how many batches have been committed.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) Close() error {
	return nil
}
