package mcp

import (
	"time"
)

// CompareInput defines the input for simcheck_compare tool.
type CompareInput struct {
	FileA     string `json:"file_a" jsonschema:"first file, relative to the project root"`
	FileB     string `json:"file_b" jsonschema:"second file, relative to the project root"`
	Symmetric bool   `json:"symmetric,omitempty" jsonschema:"align in both directions and average the ratios (default: false)"`
}

// CompareOutput defines the output for simcheck_compare tool.
type CompareOutput struct {
	FileA      string  `json:"file_a"`
	FileB      string  `json:"file_b"`
	Percent    float64 `json:"percent" jsonschema:"similarity percentage (0-100)"`
	Forward    float64 `json:"forward" jsonschema:"A to B ratio (0.0-1.0)"`
	Backward   float64 `json:"backward,omitempty" jsonschema:"B to A ratio in symmetric mode (0.0-1.0)"`
	Symmetric  bool    `json:"symmetric"`
	Degenerate bool    `json:"degenerate,omitempty" jsonschema:"a direction had nothing to score and counted as 0"`
	Matches    int     `json:"matches"`
	Edits      int     `json:"edits" jsonschema:"substitutions, deletions and insertions of the A to B script"`
}

// ScanInput defines the input for simcheck_scan tool.
type ScanInput struct {
	File      string `json:"file" jsonschema:"query file, relative to the project root"`
	Dir       string `json:"dir" jsonschema:"directory whose regular files are compared against the query file"`
	Symmetric bool   `json:"symmetric,omitempty" jsonschema:"align in both directions and average the ratios (default: false)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results, best first (default: all)"`
}

// ScanOutput defines the output for simcheck_scan tool.
type ScanOutput struct {
	File    string      `json:"file"`
	Results []ScanEntry `json:"results"`
	Count   int         `json:"count" jsonschema:"number of results returned"`
	Failed  int         `json:"failed" jsonschema:"number of entries that could not be compared"`
}

// ScanEntry is one directory entry of a scan.
type ScanEntry struct {
	File    string  `json:"file"`
	Percent float64 `json:"percent"`
	Error   string  `json:"error,omitempty"`
}

// CanonicalizeInput defines the input for simcheck_canonicalize tool.
type CanonicalizeInput struct {
	File string `json:"file" jsonschema:"file to canonicalize, relative to the project root"`
}

// CanonicalizeOutput defines the output for simcheck_canonicalize tool.
type CanonicalizeOutput struct {
	File          string   `json:"file"`
	Text          string   `json:"text" jsonschema:"canonical stream"`
	Identifiers   []string `json:"identifiers,omitempty" jsonschema:"renamed identifiers; the index is the id"`
	Canonicalized bool     `json:"canonicalized" jsonschema:"false when the file was already canonical and used as-is"`
	Cached        bool     `json:"cached,omitempty"`
}

// HistoryInput defines the input for simcheck_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of comparisons, newest first (default: 20)"`
}

// HistoryOutput defines the output for simcheck_history tool.
type HistoryOutput struct {
	Comparisons []HistoryItem `json:"comparisons"`
	Count       int           `json:"count"`
}

// HistoryItem provides a list view of a recorded comparison.
type HistoryItem struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	FileA      string    `json:"file_a"`
	FileB      string    `json:"file_b"`
	Mode       string    `json:"mode"`
	Percent    float64   `json:"percent"`
	Degenerate bool      `json:"degenerate,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
