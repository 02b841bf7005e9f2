package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simcheck <file> <file|dir> [-f]",
		Short: "Source code similarity checker",
		Long: `simcheck measures how similar two source files are.

Each file is canonicalized (comments and literals stripped, whitespace
collapsed, declared identifiers renamed to numbers) and the two token
streams are globally aligned. The share of matching characters is the
similarity percentage, so renaming variables does not hide a copy.

Compare against a directory to rank every file in it, most similar first.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <file> <file|dir>, got %d argument(s)", len(args))
			}
			full, _ := cmd.Flags().GetBool("full")
			return runCompare(cmd, args[0], args[1], full)
		},
	}

	rootCmd.Flags().BoolP("full", "f", false, "Compare in both directions and average the scores")

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newCompareCmd(),
		newCanonCmd(),
		newAlignCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}
