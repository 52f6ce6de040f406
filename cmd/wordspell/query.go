package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <text>",
		Short: "Print suggestions for one query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.engine.Close()

			results, err := a.engine.Query(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range results {
				fmt.Fprintf(out, "%2d. %s (%s)\n", i+1, c.Word.Text, c.Word.Vocabulary)
			}
			return nil
		},
	}
}
