// Package mcp provides an MCP (Model Context Protocol) server for simcheck.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/simcheck/internal/compare"
	"github.com/nvandessel/simcheck/internal/config"
	"github.com/nvandessel/simcheck/internal/logging"
	"github.com/nvandessel/simcheck/internal/ratelimit"
	"github.com/nvandessel/simcheck/internal/store"
)

// Server wraps the MCP SDK server and exposes simcheck comparisons as tools.
type Server struct {
	server       *sdk.Server
	store        store.Store
	comparator   *compare.Comparator
	settings     *config.SimcheckConfig
	root         string
	runID        string
	logger       *slog.Logger
	events       *logging.EventLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "simcheck")
	Version string // Server version
	Root    string // Project root directory; tool paths must stay inside it

	// Settings defaults to config.Default() when nil.
	Settings *config.SimcheckConfig

	// Logger defaults to a discarding logger when nil.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with simcheck tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	stateDir := store.LocalPath(root)
	if err := store.EnsureDir(stateDir); err != nil {
		return nil, err
	}

	st, err := settings.OpenStore(root)
	if err != nil {
		return nil, err
	}
	if sq, ok := st.(*store.SQLiteStore); ok {
		logger.Debug("history store opened", "path", sq.Path())
	}

	events := logging.NewEventLogger(stateDir, settings.Logging.Level)
	runID := uuid.NewString()

	comparator := compare.New(settings.ComparatorOptions(stateDir),
		compare.WithCache(st),
		compare.WithHistory(st, runID),
		compare.WithLogger(logger),
		compare.WithEvents(events),
	)

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized", "run_id", runID)
		},
	})

	s := &Server{
		server:       mcpServer,
		store:        st,
		comparator:   comparator,
		settings:     settings,
		root:         root,
		runID:        runID,
		logger:       logger,
		events:       events,
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// relative reports path relative to the project root when it lies inside it.
func (s *Server) relative(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.events.Close()
	return s.store.Close()
}
