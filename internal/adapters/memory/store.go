// Package memory provides an in-process AssignmentStore. Nothing survives the
// process, so it suits tests and dry runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// NewStoreWith returns a store pre-seeded with values.
func NewStoreWith(values map[string]string) *Store {
	s := NewStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Assignment
	for k, raw := range s.values {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		v, ok := domain.ParseVariant(raw)
		if !ok {
			continue
		}
		out = append(out, domain.Assignment{Experiment: strings.TrimPrefix(k, prefix), Variant: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Experiment < out[j].Experiment })
	return out, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
