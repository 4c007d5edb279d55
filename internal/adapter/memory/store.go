package memory

import (
	"context"
	"sync"
)

// Store is a process-lifetime key-value store. It plays the role of session
// storage: used when no durable backend is reachable, gone on restart.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	return value, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
