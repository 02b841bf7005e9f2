// Package store persists canonical forms and comparison history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/simcheck/internal/canon"
)

// ErrCorruptEntry is returned when a stored row fails validation: a cached
// canonical form whose checksum does not match, or a comparison whose mode
// is unknown.
var ErrCorruptEntry = errors.New("corrupt store entry")

// Comparison is one recorded file-pair comparison.
type Comparison struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	FileA      string    `json:"file_a"`
	FileB      string    `json:"file_b"`
	Symmetric  bool      `json:"symmetric"`
	Percent    float64   `json:"percent"`
	Degenerate bool      `json:"degenerate,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the persistence surface used by simcheck.
type Store interface {
	// GetCanonical returns the cached canonical form for key.
	// Returns false when the key is absent.
	GetCanonical(ctx context.Context, key string) (*canon.Result, bool, error)

	// PutCanonical caches a canonical form under key, replacing any previous entry.
	PutCanonical(ctx context.Context, key string, r *canon.Result) error

	// RecordComparison appends a comparison to the history.
	// Missing ID and CreatedAt are filled in; the stored record is returned.
	RecordComparison(ctx context.Context, c Comparison) (Comparison, error)

	// ListComparisons returns the most recent comparisons, newest first.
	// A limit <= 0 returns everything.
	ListComparisons(ctx context.Context, limit int) ([]Comparison, error)

	// Close releases resources held by the store.
	Close() error
}
