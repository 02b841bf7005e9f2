// Package canon reduces source text to a canonical token stream.
//
// Canonicalization removes comments, turns statement punctuation into line
// breaks, collapses whitespace and replaces every identifier declared with a
// primitive type by a per-file integer id. Two files that differ only by a
// consistent renaming of such identifiers produce the same stream.
package canon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/simcheck/internal/constants"
)

// Result is the output of one canonicalization pass.
type Result struct {
	// Text is the canonical stream: words joined by single spaces.
	Text string

	// Identifiers lists the renamed names; the index is the id.
	Identifiers []string
}

// Canonicalizer holds the settings of the canonicalization pipeline.
// It is stateless between calls and safe for concurrent use.
type Canonicalizer struct {
	keywords       []string
	maxIdentifiers int
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithKeywords replaces the primitive-type keywords that introduce declarations.
func WithKeywords(keywords []string) Option {
	return func(c *Canonicalizer) {
		c.keywords = append([]string(nil), keywords...)
	}
}

// WithMaxIdentifiers sets the per-file dictionary capacity; <= 0 is unlimited.
func WithMaxIdentifiers(n int) Option {
	return func(c *Canonicalizer) {
		c.maxIdentifiers = n
	}
}

// New creates a Canonicalizer with the default C primitive types and
// dictionary capacity.
func New(opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		keywords:       constants.PrimitiveTypes,
		maxIdentifiers: constants.DefaultMaxIdentifiers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fingerprint identifies the settings that influence the output.
// Cached canonical forms are only valid for an equal fingerprint.
func (c *Canonicalizer) Fingerprint() string {
	kw := append([]string(nil), c.keywords...)
	sort.Strings(kw)
	return fmt.Sprintf("kw=%s;max=%d", strings.Join(kw, ","), c.maxIdentifiers)
}

// Canonicalize runs the full pipeline over src. On error nothing usable is
// returned: a partially renamed stream would compare as garbage.
// Input that is already a canonical stream comes back unchanged.
func (c *Canonicalizer) Canonicalize(src []byte) (*Result, error) {
	if IsCanonical(src) || IsStream(src) {
		return &Result{Text: string(src)}, nil
	}

	text := StripComments(src)
	text = RemoveSymbols(text, constants.StatementSymbols, true)
	text = RemoveSymbols(text, constants.NoiseSymbols, false)
	text = CollapseWhitespace(text)

	keywords := make(map[string]bool, len(c.keywords))
	for _, kw := range c.keywords {
		keywords[kw] = true
	}

	// A fresh dictionary per call: ids never leak between files.
	t := &tokenizer{keywords: keywords, dict: NewDictionary(c.maxIdentifiers)}
	words, err := t.run(string(text))
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	return &Result{
		Text:        strings.Join(words, " "),
		Identifiers: t.dict.Names(),
	}, nil
}
