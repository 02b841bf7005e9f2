package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/agnivade/levenshtein"
	"github.com/nvandessel/simcheck/internal/align"
	"github.com/nvandessel/simcheck/internal/compare"
	"github.com/nvandessel/simcheck/internal/logging"
	"github.com/spf13/cobra"
)

func newAlignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <fileA> <fileB>",
		Short: "Show the edit script between two files",
		Long: `Align the raw bytes of two files and print the operation counts, the
unit cost and, with --script, the operation string (= match, ! substitute,
- delete, + insert).

The cost is cross-checked against an independent Levenshtein distance
when both inputs are shorter than 65535 bytes.
Use --canonical to align the canonical forms instead of the raw bytes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, _ := cmd.Flags().GetBool("canonical")
			showScript, _ := cmd.Flags().GetBool("script")
			jsonOut, _ := cmd.Flags().GetBool("json")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			var a, b []byte
			if canonical {
				s, err := openSession(cmd)
				if err != nil {
					return err
				}
				defer s.Close()

				docA, err := s.comparator.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				docB, err := s.comparator.Load(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				a, b = []byte(docA.Text), []byte(docB.Text)
			} else {
				if a, err = os.ReadFile(args[0]); err != nil {
					return fmt.Errorf("%w: %w", compare.ErrFileUnreadable, err)
				}
				if b, err = os.ReadFile(args[1]); err != nil {
					return fmt.Errorf("%w: %w", compare.ErrFileUnreadable, err)
				}
			}

			script, err := align.NewEngine(align.Unit, settings.Alignment.MaxInputBytes).Align(a, b)
			if err != nil {
				return err
			}

			counts := script.Counts()
			cost := script.Cost(align.Unit)
			distance, checked := crossCheck(a, b)
			if !checked {
				logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()).Debug(
					"skipping levenshtein cross-check, inputs too long", "len_a", len(a), "len_b", len(b))
			} else if cost != distance {
				return fmt.Errorf("alignment cost %d disagrees with levenshtein distance %d", cost, distance)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				result := map[string]any{
					"counts": counts,
					"cost":   cost,
				}
				if checked {
					result["distance"] = distance
				}
				if showScript {
					result["script"] = script.String()
				}
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "Matches:       %d\n", counts.Match)
			fmt.Fprintf(out, "Substitutions: %d\n", counts.Substitute)
			fmt.Fprintf(out, "Deletions:     %d\n", counts.Delete)
			fmt.Fprintf(out, "Insertions:    %d\n", counts.Insert)
			fmt.Fprintf(out, "Cost:          %d\n", cost)
			if showScript {
				fmt.Fprintf(out, "Script:        %s\n", script)
			}
			return nil
		},
	}

	cmd.Flags().Bool("canonical", false, "Align canonical forms instead of raw bytes")
	cmd.Flags().Bool("script", false, "Print the operation string")

	return cmd
}

// crossCheck computes the levenshtein distance of a and b. The library keeps
// its DP row in uint16, so inputs whose distance could pass math.MaxUint16
// (row value plus one) are not checked.
func crossCheck(a, b []byte) (int, bool) {
	if max(len(a), len(b)) >= math.MaxUint16 {
		return 0, false
	}
	return levenshtein.ComputeDistance(byteString(a), byteString(b)), true
}

// byteString maps every byte to its own rune so the distance counts bytes.
func byteString(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
