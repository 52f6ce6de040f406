package main

import (
	"github.com/bastiangx/wordspell/internal/cli"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newReplCmd(f *flags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type queries interactively -- useful for testing and debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := f.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.engine.Close()

			h := cli.NewInputHandler(a.engine, cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Server.MaxQueryLength)
			if save {
				if a.configPath == "" {
					log.Warn("No config file in use, :m and :v changes will not be saved")
				} else {
					h.SaveTo(a.configPath)
				}
			}
			return h.Start(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Write :m and :v changes to the config file")
	return cmd
}
