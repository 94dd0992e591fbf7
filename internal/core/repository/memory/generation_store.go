// Package memory holds in-process implementations of domain stores for a
// single replica and for tests.
package memory

import (
	"context"
	"sync"
)

// GenerationStore is an in-memory domain.GenerationStore.
type GenerationStore struct {
	mu     sync.Mutex
	gens   map[string]uint64
	epochs map[string]uint64
}

func NewGenerationStore() *GenerationStore {
	return &GenerationStore{
		gens:   make(map[string]uint64),
		epochs: make(map[string]uint64),
	}
}

func (s *GenerationStore) Next(_ context.Context, userID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[userID]++
	return s.gens[userID], nil
}

func (s *GenerationStore) Current(_ context.Context, userID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID], nil
}

func (s *GenerationStore) Epoch(_ context.Context, userID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[userID], nil
}

func (s *GenerationStore) BumpEpoch(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochs[userID]++
	return nil
}
