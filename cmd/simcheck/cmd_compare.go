package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvandessel/simcheck/internal/compare"
	"github.com/nvandessel/simcheck/internal/config"
	"github.com/nvandessel/simcheck/internal/pathutil"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file> <file|dir>",
		Short: "Compare a file against another file or a directory",
		Long: `Compare two source files and print their similarity percentage.

When the second argument is a directory, the file is compared against every
regular file in it (subdirectories are skipped) and the results are listed
most similar first. Entries that fail are listed last with their error.

Examples:
  simcheck compare a.c b.c          # Similarity: 87.500000%
  simcheck compare a.c b.c -f       # average of a->b and b->a
  simcheck compare a.c submissions/ # rank a directory`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			full, _ := cmd.Flags().GetBool("full")
			return runCompare(cmd, args[0], args[1], full)
		},
	}

	cmd.Flags().BoolP("full", "f", false, "Compare in both directions and average the scores")

	return cmd
}

// runCompare compares file against target, a file or a directory.
func runCompare(cmd *cobra.Command, file, target string, full bool) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := checkQueryFile(s.settings, file); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	symmetric := full || s.settings.Scoring.Symmetric
	jsonOut, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		if !pathutil.IsValidDirname(target) {
			return fmt.Errorf("invalid directory name: %q", target)
		}

		results, err := s.comparator.CompareDir(ctx, file, target, symmetric)
		if err != nil && results == nil {
			return err
		}

		if jsonOut {
			entries := make([]map[string]any, 0, len(results))
			for _, r := range results {
				entry := map[string]any{"file": r.File, "percent": r.Percent}
				if r.Err != nil {
					entry["error"] = r.Err.Error()
				}
				entries = append(entries, entry)
			}
			if encErr := json.NewEncoder(out).Encode(map[string]any{
				"file":      file,
				"dir":       target,
				"symmetric": symmetric,
				"results":   entries,
			}); encErr != nil {
				return encErr
			}
		} else {
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "n: %s error: %v\n", r.File, r.Err)
				} else {
					fmt.Fprintf(out, "n: %s p: %f\n", r.File, r.Percent)
				}
			}
		}

		// A cancelled scan still prints what it finished.
		return err
	}

	if !pathutil.IsValidFilename(target) {
		return fmt.Errorf("invalid file name: %q", target)
	}

	res, err := s.comparator.CompareFiles(ctx, file, target, symmetric)
	if err != nil {
		return err
	}

	if res.Degenerate {
		s.logger.Warn("nothing to score in at least one direction, counted as 0", "file_a", file, "file_b", target)
	}

	if jsonOut {
		return json.NewEncoder(out).Encode(pairOutput(file, res))
	}
	fmt.Fprintf(out, "Similarity: %f%%\n", res.Percent)
	return nil
}

// checkQueryFile validates the first argument of a comparison.
func checkQueryFile(settings *config.SimcheckConfig, file string) error {
	if !pathutil.IsValidFilename(file) {
		return fmt.Errorf("invalid file name: %q", file)
	}
	if !pathutil.HasAllowedExtension(file, settings.Input.Extensions) {
		return fmt.Errorf("%s: extension not in input.extensions %v", file, settings.Input.Extensions)
	}
	return nil
}

func pairOutput(file string, res *compare.Result) map[string]any {
	return map[string]any{
		"file_a":     file,
		"file_b":     res.File,
		"percent":    res.Percent,
		"forward":    res.Forward,
		"backward":   res.Backward,
		"symmetric":  res.Symmetric,
		"degenerate": res.Degenerate,
		"counts":     res.Counts,
	}
}
