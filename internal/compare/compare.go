// Package compare scores the similarity of source files.
//
// A Comparator loads each file (canonicalizing it when needed), aligns the
// two streams with unit cost and turns the edit script into a percentage.
// Symmetric comparison aligns in both directions and averages the ratios.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nvandessel/simcheck/internal/align"
	"github.com/nvandessel/simcheck/internal/canon"
	"github.com/nvandessel/simcheck/internal/constants"
	"github.com/nvandessel/simcheck/internal/logging"
	"github.com/nvandessel/simcheck/internal/similarity"
	"github.com/nvandessel/simcheck/internal/store"
)

// ErrFileUnreadable is returned when an input file cannot be opened or read.
var ErrFileUnreadable = errors.New("file unreadable")

// CanonicalCache stores canonical forms between runs.
type CanonicalCache interface {
	GetCanonical(ctx context.Context, key string) (*canon.Result, bool, error)
	PutCanonical(ctx context.Context, key string, r *canon.Result) error
}

// History records finished comparisons.
type History interface {
	RecordComparison(ctx context.Context, c store.Comparison) (store.Comparison, error)
}

// Options holds the comparison settings.
type Options struct {
	// PrimaryPath receives the canonical form of the first file. Empty disables.
	PrimaryPath string

	// SecondaryPath receives the canonical form of the second file. Empty disables.
	SecondaryPath string

	// Policy selects the ratio denominator.
	Policy similarity.Policy

	// MaxInput bounds the combined stream length of one alignment. Zero disables.
	MaxInput int

	// Canonicalizer overrides the default C canonicalizer.
	Canonicalizer *canon.Canonicalizer
}

// Option configures optional collaborators of a Comparator.
type Option func(*Comparator)

// WithCache enables canonical form caching.
func WithCache(cache CanonicalCache) Option {
	return func(c *Comparator) { c.cache = cache }
}

// WithHistory records every finished pair under runID.
func WithHistory(h History, runID string) Option {
	return func(c *Comparator) {
		c.history = h
		c.runID = runID
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEvents traces every finished pair to an event log.
func WithEvents(el *logging.EventLogger) Option {
	return func(c *Comparator) { c.events = el }
}

// Comparator compares files. It holds no per-comparison state.
type Comparator struct {
	opts    Options
	canon   *canon.Canonicalizer
	engine  *align.Engine
	cache   CanonicalCache
	history History
	runID   string
	logger  *slog.Logger
	events  *logging.EventLogger
}

// New creates a Comparator.
func New(opts Options, options ...Option) *Comparator {
	c := &Comparator{
		opts:   opts,
		canon:  opts.Canonicalizer,
		engine: align.NewEngine(align.Unit, opts.MaxInput),
		logger: logging.Discard(),
	}
	if c.canon == nil {
		c.canon = canon.New()
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Result is the outcome of one file pair.
type Result struct {
	// File is the second file of the pair.
	File string `json:"file"`

	// Percent is the similarity in [0,100].
	Percent float64 `json:"percent"`

	// Forward is the A→B ratio; Backward the B→A ratio in symmetric mode.
	Forward  float64 `json:"forward"`
	Backward float64 `json:"backward"`

	Symmetric bool `json:"symmetric"`

	// Degenerate is set when a direction had nothing to score and counted as 0.
	Degenerate bool `json:"degenerate,omitempty"`

	// Counts tallies the A→B edit script.
	Counts align.Counts `json:"counts"`

	// Err holds a per-entry failure in directory scans.
	Err error `json:"-"`
}

// CompareFiles compares a against b. Both files are prepared before either
// canonical form is persisted, so a failure writes nothing.
func (c *Comparator) CompareFiles(ctx context.Context, a, b string, symmetric bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docA, err := c.Load(ctx, a)
	if err != nil {
		return nil, err
	}
	docB, err := c.Load(ctx, b)
	if err != nil {
		return nil, err
	}

	if err := persist(docA, c.opts.PrimaryPath); err != nil {
		return nil, err
	}
	if err := persist(docB, c.opts.SecondaryPath); err != nil {
		return nil, err
	}

	res, err := c.CompareDocuments(ctx, docA, docB, symmetric)
	if err != nil {
		c.finish(ctx, a, &Result{File: b, Symmetric: symmetric, Err: err})
		return nil, err
	}
	c.finish(ctx, a, res)
	return res, nil
}

// CompareDocuments aligns two prepared documents and scores them.
func (c *Comparator) CompareDocuments(ctx context.Context, a, b *Document, symmetric bool) (*Result, error) {
	res := &Result{File: b.Path, Symmetric: symmetric}

	forward, err := c.engine.Align([]byte(a.Text), []byte(b.Text))
	if err != nil {
		return nil, fmt.Errorf("align %s against %s: %w", a.Path, b.Path, err)
	}
	c.logger.Log(ctx, logging.LevelTrace, "aligned",
		"a", a.Path, "b", b.Path, "script", forward.String())

	res.Counts = forward.Counts()
	res.Forward = c.ratio(res, forward)
	ratio := res.Forward

	if symmetric {
		backward, err := c.engine.Align([]byte(b.Text), []byte(a.Text))
		if err != nil {
			return nil, fmt.Errorf("align %s against %s: %w", b.Path, a.Path, err)
		}
		res.Backward = c.ratio(res, backward)
		ratio = similarity.Mean(res.Forward, res.Backward)
	}

	res.Percent = similarity.Percent(ratio)
	return res, nil
}

// ratio scores s, recording a degenerate direction on res.
func (c *Comparator) ratio(res *Result, s align.Script) float64 {
	r, err := similarity.Score(s, c.opts.Policy)
	if errors.Is(err, similarity.ErrDegenerateRatio) {
		res.Degenerate = true
	}
	return r
}

// CompareDir compares file against every regular entry of dir. Symlinks are
// followed and sub-directories skipped. Per-entry failures are reported in
// Result.Err. Results are ordered by descending percent, failures last, ties
// by path. When ctx is cancelled the results gathered so far are returned
// with the context error.
func (c *Comparator) CompareDir(ctx context.Context, file, dir string, symmetric bool) ([]Result, error) {
	docA, err := c.Load(ctx, file)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}

	if err := persist(docA, c.opts.PrimaryPath); err != nil {
		return nil, err
	}

	var results []Result
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			SortResults(results)
			return results, err
		}

		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			r := Result{File: path, Symmetric: symmetric, Err: fmt.Errorf("%w: %w", ErrFileUnreadable, err)}
			c.finish(ctx, file, &r)
			results = append(results, r)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		r := c.compareEntry(ctx, docA, path, symmetric)
		c.finish(ctx, file, &r)
		results = append(results, r)
	}

	SortResults(results)
	return results, nil
}

func (c *Comparator) compareEntry(ctx context.Context, docA *Document, path string, symmetric bool) Result {
	docB, err := c.Load(ctx, path)
	if err != nil {
		return Result{File: path, Symmetric: symmetric, Err: err}
	}
	if err := persist(docB, c.opts.SecondaryPath); err != nil {
		return Result{File: path, Symmetric: symmetric, Err: err}
	}
	res, err := c.CompareDocuments(ctx, docA, docB, symmetric)
	if err != nil {
		return Result{File: path, Symmetric: symmetric, Err: err}
	}
	return *res
}

// SortResults orders results by descending percent with failures last;
// ties are broken by path.
func SortResults(results []Result) {
	slices.SortStableFunc(results, func(x, y Result) int {
		switch {
		case (x.Err != nil) != (y.Err != nil):
			if x.Err != nil {
				return 1
			}
			return -1
		case x.Percent > y.Percent:
			return -1
		case x.Percent < y.Percent:
			return 1
		}
		return strings.Compare(x.File, y.File)
	})
}

// finish logs, traces and records one pair.
func (c *Comparator) finish(ctx context.Context, a string, r *Result) {
	mode := constants.ModeFor(r.Symmetric)
	if r.Err != nil {
		c.logger.Debug("comparison failed", "a", a, "b", r.File, "mode", mode, "error", r.Err)
	} else {
		c.logger.Debug("comparison finished", "a", a, "b", r.File, "mode", mode, "percent", r.Percent)
	}

	event := map[string]any{
		"event":   "compare",
		"run_id":  c.runID,
		"file_a":  a,
		"file_b":  r.File,
		"mode":    mode.String(),
		"percent": r.Percent,
		"forward": r.Forward,
	}
	if r.Symmetric {
		event["backward"] = r.Backward
	}
	if r.Degenerate {
		event["degenerate"] = true
	}
	if r.Err != nil {
		event["error"] = r.Err.Error()
	}
	c.events.Log(event)

	if c.history == nil {
		return
	}
	rec := store.Comparison{
		RunID:      c.runID,
		FileA:      a,
		FileB:      r.File,
		Symmetric:  r.Symmetric,
		Percent:    r.Percent,
		Degenerate: r.Degenerate,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if _, err := c.history.RecordComparison(ctx, rec); err != nil {
		c.logger.Warn("failed to record comparison", "a", a, "b", r.File, "error", err)
	}
}
