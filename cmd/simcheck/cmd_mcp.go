package main

import (
	"fmt"

	"github.com/nvandessel/simcheck/internal/logging"
	"github.com/nvandessel/simcheck/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: simcheck_compare, simcheck_scan, simcheck_canonicalize and
simcheck_history. Every file argument must lie inside --root.
Logs go to stderr so they never corrupt the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "simcheck",
				Version:  version,
				Root:     root,
				Settings: settings,
				Logger:   logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			return server.Run(cmd.Context())
		},
	}
}
