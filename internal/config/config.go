// Package config provides unified configuration loading for simcheck.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/simcheck/internal/canon"
	"github.com/nvandessel/simcheck/internal/compare"
	"github.com/nvandessel/simcheck/internal/constants"
	"github.com/nvandessel/simcheck/internal/similarity"
	"github.com/nvandessel/simcheck/internal/store"
	"gopkg.in/yaml.v3"
)

// SimcheckConfig contains all simcheck configuration settings.
type SimcheckConfig struct {
	// Canonical controls the canonicalization pipeline and its persisted output.
	Canonical CanonicalConfig `json:"canonical" yaml:"canonical"`

	// Alignment bounds the edit-distance engine.
	Alignment AlignmentConfig `json:"alignment" yaml:"alignment"`

	// Scoring controls how edit scripts become percentages.
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`

	// Store configures the comparison history database.
	Store StoreConfig `json:"store" yaml:"store"`

	// Input restricts which files are accepted as query files.
	Input InputConfig `json:"input" yaml:"input"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// CanonicalConfig configures canonicalization.
type CanonicalConfig struct {
	// PrimaryPath receives the canonical form of the first file.
	// Relative paths resolve against the project's .simcheck directory.
	PrimaryPath string `json:"primary_path" yaml:"primary_path"`

	// SecondaryPath receives the canonical form of the second file.
	SecondaryPath string `json:"secondary_path" yaml:"secondary_path"`

	// MaxIdentifiers caps the per-file identifier dictionary.
	MaxIdentifiers int `json:"max_identifiers" yaml:"max_identifiers"`

	// Keywords overrides the primitive type keywords. Empty means the built-in set.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// AlignmentConfig configures the alignment engine.
type AlignmentConfig struct {
	// MaxInputBytes bounds the combined length of two aligned streams.
	MaxInputBytes int `json:"max_input_bytes" yaml:"max_input_bytes"`
}

// ScoringConfig configures scoring.
type ScoringConfig struct {
	// CountInsertions adds insertions to the ratio denominator.
	CountInsertions bool `json:"count_insertions" yaml:"count_insertions"`

	// Symmetric makes symmetric comparison the default (same as -f).
	Symmetric bool `json:"symmetric" yaml:"symmetric"`
}

// Policy returns the similarity policy for these settings.
func (s ScoringConfig) Policy() similarity.Policy {
	return similarity.Policy{CountInsertions: s.CountInsertions}
}

// StoreConfig configures the comparison history database.
type StoreConfig struct {
	// Enabled turns on canonical caching and history recording.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path overrides the database location. Empty means .simcheck/simcheck.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// InputConfig restricts accepted query files.
type InputConfig struct {
	// Extensions lists accepted query-file suffixes, e.g. [".c"]. Empty accepts all.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// LoggingConfig configures simcheck's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to .simcheck/events.jsonl.
	// "trace" additionally logs canonical streams and edit scripts.
	Level string `json:"level" yaml:"level"`
}

// Default returns a SimcheckConfig with sensible defaults.
func Default() *SimcheckConfig {
	return &SimcheckConfig{
		Canonical: CanonicalConfig{
			PrimaryPath:    constants.DefaultPrimaryCanonicalPath,
			SecondaryPath:  constants.DefaultSecondaryCanonicalPath,
			MaxIdentifiers: constants.DefaultMaxIdentifiers,
		},
		Alignment: AlignmentConfig{
			MaxInputBytes: constants.DefaultMaxInputBytes,
		},
		Scoring: ScoringConfig{
			CountInsertions: false,
			Symmetric:       false,
		},
		Store: StoreConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.simcheck/config.yaml.
func DefaultPath() (string, error) {
	globalDir, err := store.GlobalPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(globalDir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.simcheck/config.yaml -> environment variables
func Load() (*SimcheckConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Unset keys keep their defaults.
func LoadFromFile(path string) (*SimcheckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Canonical.PrimaryPath = expandEnvVars(config.Canonical.PrimaryPath)
	config.Canonical.SecondaryPath = expandEnvVars(config.Canonical.SecondaryPath)
	config.Store.Path = expandEnvVars(config.Store.Path)

	return config, nil
}

// Save writes the configuration as YAML to path, creating its directory.
func (c *SimcheckConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *SimcheckConfig) Validate() error {
	if c.Canonical.PrimaryPath == "" || c.Canonical.SecondaryPath == "" {
		return fmt.Errorf("canonical output paths must not be empty")
	}
	if filepath.Clean(c.Canonical.PrimaryPath) == filepath.Clean(c.Canonical.SecondaryPath) {
		return fmt.Errorf("canonical output paths must differ, both are %s", c.Canonical.PrimaryPath)
	}

	if c.Canonical.MaxIdentifiers <= 0 {
		return fmt.Errorf("max_identifiers must be positive, got %d", c.Canonical.MaxIdentifiers)
	}

	if c.Alignment.MaxInputBytes < 0 {
		return fmt.Errorf("max_input_bytes must be non-negative, got %d", c.Alignment.MaxInputBytes)
	}

	for _, ext := range c.Input.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension: %q (must start with '.')", ext)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// CanonicalPaths resolves the primary and secondary output paths against stateDir.
func (c *SimcheckConfig) CanonicalPaths(stateDir string) (primary, secondary string) {
	return resolve(stateDir, c.Canonical.PrimaryPath), resolve(stateDir, c.Canonical.SecondaryPath)
}

// DatabasePath resolves the history database location against stateDir.
func (c *SimcheckConfig) DatabasePath(stateDir string) string {
	if c.Store.Path == "" {
		return filepath.Join(stateDir, constants.DatabaseFileName)
	}
	return resolve(stateDir, c.Store.Path)
}

// OpenStore opens the history store for the project at root. A disabled
// store yields an in-memory one that lives as long as the process.
func (c *SimcheckConfig) OpenStore(root string) (store.Store, error) {
	if !c.Store.Enabled {
		return store.NewInMemoryStore(), nil
	}

	var (
		s   *store.SQLiteStore
		err error
	)
	if c.Store.Path == "" {
		s, err = store.OpenProject(root)
	} else {
		s, err = store.NewSQLiteStore(c.DatabasePath(store.LocalPath(root)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// Canonicalizer builds the canonicalizer described by the settings.
func (c *SimcheckConfig) Canonicalizer() *canon.Canonicalizer {
	opts := []canon.Option{canon.WithMaxIdentifiers(c.Canonical.MaxIdentifiers)}
	if len(c.Canonical.Keywords) > 0 {
		opts = append(opts, canon.WithKeywords(c.Canonical.Keywords))
	}
	return canon.New(opts...)
}

// ComparatorOptions returns comparison options with output paths resolved
// against stateDir.
func (c *SimcheckConfig) ComparatorOptions(stateDir string) compare.Options {
	primary, secondary := c.CanonicalPaths(stateDir)
	return compare.Options{
		PrimaryPath:   primary,
		SecondaryPath: secondary,
		Policy:        c.Scoring.Policy(),
		MaxInput:      c.Alignment.MaxInputBytes,
		Canonicalizer: c.Canonicalizer(),
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Keys lists every key accepted by Get and Set, in display order.
func Keys() []string {
	return []string{
		"canonical.primary_path",
		"canonical.secondary_path",
		"canonical.max_identifiers",
		"canonical.keywords",
		"alignment.max_input_bytes",
		"scoring.count_insertions",
		"scoring.symmetric",
		"store.enabled",
		"store.path",
		"input.extensions",
		"logging.level",
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *SimcheckConfig) Get(key string) (any, bool) {
	switch key {
	case "canonical.primary_path":
		return c.Canonical.PrimaryPath, true
	case "canonical.secondary_path":
		return c.Canonical.SecondaryPath, true
	case "canonical.max_identifiers":
		return c.Canonical.MaxIdentifiers, true
	case "canonical.keywords":
		return c.Canonical.Keywords, true
	case "alignment.max_input_bytes":
		return c.Alignment.MaxInputBytes, true
	case "scoring.count_insertions":
		return c.Scoring.CountInsertions, true
	case "scoring.symmetric":
		return c.Scoring.Symmetric, true
	case "store.enabled":
		return c.Store.Enabled, true
	case "store.path":
		return c.Store.Path, true
	case "input.extensions":
		return c.Input.Extensions, true
	case "logging.level":
		return c.Logging.Level, true
	default:
		return nil, false
	}
}

// Set sets a configuration value by dot-notation key.
// List values are comma-separated; an empty value clears the list.
func (c *SimcheckConfig) Set(key, value string) error {
	switch key {
	case "canonical.primary_path":
		c.Canonical.PrimaryPath = value
	case "canonical.secondary_path":
		c.Canonical.SecondaryPath = value
	case "canonical.max_identifiers":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid max_identifiers: %s (must be a positive integer)", value)
		}
		c.Canonical.MaxIdentifiers = n
	case "canonical.keywords":
		c.Canonical.Keywords = splitList(value)
	case "alignment.max_input_bytes":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max_input_bytes: %s (must be a non-negative integer)", value)
		}
		c.Alignment.MaxInputBytes = n
	case "scoring.count_insertions":
		c.Scoring.CountInsertions = parseBool(value)
	case "scoring.symmetric":
		c.Scoring.Symmetric = parseBool(value)
	case "store.enabled":
		c.Store.Enabled = parseBool(value)
	case "store.path":
		c.Store.Path = value
	case "input.extensions":
		c.Input.Extensions = splitList(value)
	case "logging.level":
		c.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return c.Validate()
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SimcheckConfig) {
	if v := os.Getenv("SIMCHECK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("SIMCHECK_COUNT_INSERTIONS"); v != "" {
		config.Scoring.CountInsertions = parseBool(v)
	}

	if v := os.Getenv("SIMCHECK_SYMMETRIC"); v != "" {
		config.Scoring.Symmetric = parseBool(v)
	}

	if v := os.Getenv("SIMCHECK_STORE_ENABLED"); v != "" {
		config.Store.Enabled = parseBool(v)
	}

	if v := os.Getenv("SIMCHECK_MAX_INPUT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Alignment.MaxInputBytes = n
		}
	}

	if v := os.Getenv("SIMCHECK_MAX_IDENTIFIERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Canonical.MaxIdentifiers = n
		}
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
