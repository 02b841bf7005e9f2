package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCanonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canon <file>",
		Short: "Print the canonical form of a file",
		Long: `Print the token stream a file is compared as.

Files that contain none of the structural characters ' " ; : { or
whitespace control characters are already canonical and printed as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showIdents, _ := cmd.Flags().GetBool("identifiers")
			jsonOut, _ := cmd.Flags().GetBool("json")
			file := args[0]

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := checkQueryFile(s.settings, file); err != nil {
				return err
			}

			doc, err := s.comparator.Load(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"file":          file,
					"text":          doc.Text,
					"identifiers":   doc.Identifiers,
					"canonicalized": doc.Canonicalized,
					"cached":        doc.Cached,
				})
			}

			fmt.Fprintln(out, doc.Text)
			if showIdents {
				for id, name := range doc.Identifiers {
					fmt.Fprintf(out, "%d: %s\n", id, name)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("identifiers", false, "Also list the identifier dictionary")

	return cmd
}
