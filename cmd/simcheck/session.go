package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/nvandessel/simcheck/internal/compare"
	"github.com/nvandessel/simcheck/internal/config"
	"github.com/nvandessel/simcheck/internal/logging"
	"github.com/nvandessel/simcheck/internal/store"
	"github.com/spf13/cobra"
)

// session bundles what a comparing command needs for one invocation.
type session struct {
	settings   *config.SimcheckConfig
	root       string
	stateDir   string
	runID      string
	logger     *slog.Logger
	events     *logging.EventLogger
	store      store.Store
	comparator *compare.Comparator
}

// loadSettings reads the user config and applies the --log-level flag.
func loadSettings(cmd *cobra.Command) (*config.SimcheckConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openSession loads settings, opens the project store and builds a comparator.
func openSession(cmd *cobra.Command) (*session, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	rootFlag, _ := cmd.Flags().GetString("root")
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	stateDir := store.LocalPath(root)
	if err := store.EnsureDir(stateDir); err != nil {
		return nil, err
	}

	st, err := settings.OpenStore(root)
	if err != nil {
		return nil, err
	}

	s := &session{
		settings: settings,
		root:     root,
		stateDir: stateDir,
		runID:    uuid.NewString(),
		logger:   logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()),
		events:   logging.NewEventLogger(stateDir, settings.Logging.Level),
		store:    st,
	}
	if sq, ok := st.(*store.SQLiteStore); ok {
		s.logger.Debug("history store opened", "path", sq.Path())
	}
	s.comparator = compare.New(settings.ComparatorOptions(stateDir),
		compare.WithCache(st),
		compare.WithHistory(st, s.runID),
		compare.WithLogger(s.logger),
		compare.WithEvents(s.events),
	)
	return s, nil
}

// Close releases the store and the event log.
func (s *session) Close() error {
	s.events.Close()
	return s.store.Close()
}

// signalContext returns a context cancelled on interrupt or termination.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
