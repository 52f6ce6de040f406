package main

import (
	"context"
	"os"

	"github.com/bastiangx/wordspell/internal/watch"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newServeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve suggestions as msgpack over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := f.setup(ctx)
			if err != nil {
				return err
			}
			defer a.engine.Close()

			srv := server.NewServer(a.engine, a.cfg, os.Stdin, os.Stdout)
			if a.cfg.Server.ReloadConfig && a.configPath != "" {
				go func() {
					err := watch.Config(ctx, a.configPath, watch.DefaultDebounce, func(cfg *config.Config) {
						if err := a.reload(ctx, cfg); err != nil {
							log.Warnf("Config reload: %v", err)
						}
						srv.UpdateConfig(cfg)
					})
					if err != nil {
						log.Warnf("Config reload disabled: %v", err)
					}
				}()
			}

			showStartupInfo(a)
			return srv.Start(ctx)
		},
	}
}

// reload applies a changed config file to the engine. The vocabulary dir is
// bound to the loader at startup, so a new one takes effect on restart.
func (a *app) reload(ctx context.Context, cfg *config.Config) error {
	if cfg.Vocabulary.Dir != a.cfg.Vocabulary.Dir {
		log.Warnf("Vocabulary dir change (%s -> %s) takes effect on restart", a.cfg.Vocabulary.Dir, cfg.Vocabulary.Dir)
	}
	if err := a.engine.ApplyConfig(ctx, cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(a *app) {
	st := a.engine.Stats()
	log.Debugf("%s %s ready: pid=%d vocabulary=[%s] words=%d matching=%s config=%s",
		AppName, Version, os.Getpid(), st.Vocabulary, st.Words, st.Matching,
		config.GetActiveConfigPath(a.configPath))
}
