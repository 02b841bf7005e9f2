package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/nvandessel/simcheck/internal/canon"
)

// Document is one file prepared for alignment.
type Document struct {
	// Path is the file the document was loaded from.
	Path string

	// Text is the stream that gets aligned: the canonical form, or the raw
	// bytes when the file was already canonical.
	Text string

	// Identifiers lists the renamed names, in id order.
	Identifiers []string

	// Canonicalized is false when the file was used as-is.
	Canonicalized bool

	// Cached is true when Text came from the canonical cache.
	Cached bool
}

// CacheKey identifies a canonical form: the canonicalizer fingerprint plus
// the exact source bytes.
func CacheKey(fingerprint string, src []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(fingerprint)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(src)
	return strconv.FormatUint(d.Sum64(), 16)
}

// Load reads path and produces its comparable stream. A file containing
// none of the reserved characters is used unchanged; anything else is
// canonicalized. Nothing is written to disk.
func (c *Comparator) Load(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}

	if canon.IsCanonical(data) {
		return &Document{Path: path, Text: string(data)}, nil
	}

	var key string
	if c.cache != nil {
		key = CacheKey(c.canon.Fingerprint(), data)
		r, ok, err := c.cache.GetCanonical(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("canonical cache lookup failed", "path", path, "error", err)
		case ok:
			c.logger.Debug("canonical cache hit", "path", path)
			return &Document{Path: path, Text: r.Text, Identifiers: r.Identifiers, Canonicalized: true, Cached: true}, nil
		}
	}

	r, err := c.canon.Canonicalize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if c.cache != nil {
		if err := c.cache.PutCanonical(ctx, key, r); err != nil {
			c.logger.Warn("canonical cache store failed", "path", path, "error", err)
		}
	}

	return &Document{Path: path, Text: r.Text, Identifiers: r.Identifiers, Canonicalized: true}, nil
}

// persist writes a canonicalized document's stream to dst so a run can be
// inspected afterwards. Documents used as-is and an empty dst are skipped.
func persist(doc *Document, dst string) error {
	if dst == "" || !doc.Canonicalized {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create canonical output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("failed to write canonical form of %s: %w", doc.Path, err)
	}
	return nil
}
