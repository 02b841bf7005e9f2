package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/simcheck/internal/constants"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparisons",
		Long: `List the comparisons recorded in the project history, newest first.

History is kept in .simcheck/simcheck.db under the project root unless
store.enabled is false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.store.ListComparisons(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list comparisons: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"comparisons": records,
					"count":       len(records),
				})
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No comparisons recorded.")
				return nil
			}
			for _, r := range records {
				mode := constants.ModeFor(r.Symmetric)
				when := r.CreatedAt.Local().Format(time.DateTime)
				if r.Error != "" {
					fmt.Fprintf(out, "%s  %-11s  %s -> %s  error: %s\n", when, mode, r.FileA, r.FileB, r.Error)
				} else {
					fmt.Fprintf(out, "%s  %-11s  %s -> %s  %f%%\n", when, mode, r.FileA, r.FileB, r.Percent)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum number of comparisons to show")

	return cmd
}
