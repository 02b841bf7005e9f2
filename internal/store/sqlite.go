package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/nvandessel/simcheck/internal/canon"
	"github.com/nvandessel/simcheck/internal/constants"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// OpenProject opens the store at <projectRoot>/.simcheck/simcheck.db.
func OpenProject(projectRoot string) (*SQLiteStore, error) {
	return NewSQLiteStore(filepath.Join(LocalPath(projectRoot), constants.DatabaseFileName))
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// GetCanonical returns the cached canonical form for key.
func (s *SQLiteStore) GetCanonical(ctx context.Context, key string) (*canon.Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var text, identifiers, checksum string
	err := s.db.QueryRowContext(ctx,
		`SELECT canonical, identifiers, checksum FROM canonical_forms WHERE key = ?`, key,
	).Scan(&text, &identifiers, &checksum)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query canonical form: %w", err)
	}

	if checksum != textChecksum(text) {
		return nil, false, fmt.Errorf("key %s: %w", key, ErrCorruptEntry)
	}

	r := &canon.Result{Text: text}
	if err := json.Unmarshal([]byte(identifiers), &r.Identifiers); err != nil {
		return nil, false, fmt.Errorf("failed to decode identifiers: %w", err)
	}
	return r, true, nil
}

// PutCanonical caches a canonical form under key.
func (s *SQLiteStore) PutCanonical(ctx context.Context, key string, r *canon.Result) error {
	if r == nil {
		return fmt.Errorf("canonical result is required")
	}

	ids := r.Identifiers
	if ids == nil {
		ids = []string{}
	}
	identifiers, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode identifiers: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO canonical_forms (key, canonical, identifiers, checksum, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		key, r.Text, string(identifiers), textChecksum(r.Text), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to store canonical form: %w", err)
	}
	return nil
}

// RecordComparison appends a comparison to the history.
func (s *SQLiteStore) RecordComparison(ctx context.Context, c Comparison) (Comparison, error) {
	c = prepareComparison(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, run_id, file_a, file_b, mode, percent, degenerate, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RunID, c.FileA, c.FileB, constants.ModeFor(c.Symmetric).String(),
		c.Percent, boolToInt(c.Degenerate), nullString(c.Error), formatTime(c.CreatedAt),
	)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to record comparison: %w", err)
	}
	return c, nil
}

// ListComparisons returns the most recent comparisons, newest first.
func (s *SQLiteStore) ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, run_id, file_a, file_b, mode, percent, degenerate, error, created_at
		FROM comparisons ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var out []Comparison
	for rows.Next() {
		var (
			c          Comparison
			mode       string
			degenerate int
			errText    sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&c.ID, &c.RunID, &c.FileA, &c.FileB, &mode, &c.Percent, &degenerate, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		if !constants.Mode(mode).Valid() {
			return nil, fmt.Errorf("comparison %s: mode %q: %w", c.ID, mode, ErrCorruptEntry)
		}
		c.Symmetric = constants.Mode(mode).Symmetric()
		c.Degenerate = degenerate != 0
		c.Error = errText.String
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// prepareComparison fills in a missing ID and timestamp.
func prepareComparison(c Comparison) Comparison {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c
}

func textChecksum(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// formatTime renders a fixed-width UTC timestamp so text ordering matches time ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
