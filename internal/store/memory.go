package store

import (
	"context"
	"slices"
	"sync"

	"github.com/nvandessel/simcheck/internal/canon"
)

// InMemoryStore implements Store for testing and for runs without a database.
type InMemoryStore struct {
	mu          sync.RWMutex
	canonical   map[string]canon.Result
	comparisons []Comparison
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{canonical: make(map[string]canon.Result)}
}

// GetCanonical returns the cached canonical form for key.
func (s *InMemoryStore) GetCanonical(ctx context.Context, key string) (*canon.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.canonical[key]
	if !ok {
		return nil, false, nil
	}
	r.Identifiers = slices.Clone(r.Identifiers)
	return &r, true, nil
}

// PutCanonical caches a canonical form under key.
func (s *InMemoryStore) PutCanonical(ctx context.Context, key string, r *canon.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canonical[key] = canon.Result{Text: r.Text, Identifiers: slices.Clone(r.Identifiers)}
	return nil
}

// RecordComparison appends a comparison to the history.
func (s *InMemoryStore) RecordComparison(ctx context.Context, c Comparison) (Comparison, error) {
	c = prepareComparison(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.comparisons = append(s.comparisons, c)
	return c, nil
}

// ListComparisons returns the most recent comparisons, newest first.
func (s *InMemoryStore) ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.comparisons)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Comparison) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
