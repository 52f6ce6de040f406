package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordspell/internal/logger"
	"github.com/bastiangx/wordspell/internal/utils"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/engine"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// flags shared by every command
type flags struct {
	configPath string
	vocabDir   string
	debug      bool
	matching   string
	vocabulary string
	limit      int
	reset      bool
}

// app is the state a command runs with once flags and config are resolved.
type app struct {
	cfg        *config.Config
	configPath string
	engine     *engine.Engine
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Fast spelling suggestions over plain word lists",
		Long:          "WordSpell suggests words by prefix, fuzzy similarity or edit-distance correction.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to a config.toml (default: user config dir)")
	pf.StringVar(&f.vocabDir, "vocab-dir", "", "Directory containing <vocabulary>.txt word lists")
	pf.BoolVarP(&f.debug, "debug", "d", false, "Toggle debug logging")
	pf.StringVarP(&f.matching, "matching", "m", "", "Matcher: prefix, fuzzy or correction")
	pf.StringVar(&f.vocabulary, "vocabulary", "", "Comma separated vocabularies, e.g. english_uk,english")
	pf.IntVarP(&f.limit, "limit", "l", 0, "Number of suggestions to return")
	pf.BoolVar(&f.reset, "reset-config", false, "Overwrite the config file with defaults before loading it")

	cmd.AddCommand(
		newServeCmd(f),
		newReplCmd(f),
		newQueryCmd(f),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig resolves the config file and applies flag overrides.
func (f *flags) loadConfig() (*config.Config, string, error) {
	if f.reset {
		if err := f.resetConfig(); err != nil {
			return nil, "", err
		}
	}
	cfg, path, err := config.LoadConfigWithPriority(f.configPath)
	if err != nil {
		return nil, "", err
	}
	if f.matching != "" {
		cfg.Matching.Kind = f.matching
	}
	if f.vocabulary != "" {
		set, err := vocab.ParseSet(f.vocabulary)
		if err != nil {
			return nil, "", err
		}
		cfg.Vocabulary.Active = set.Strings()
	}
	if f.limit != 0 {
		cfg.Matching.ResultLimit = f.limit
	}
	if f.vocabDir != "" {
		cfg.Vocabulary.Dir = f.vocabDir
	}
	return cfg, path, cfg.Validate()
}

// resetConfig writes the default config to --config, or to the default path
// when no custom path is given.
func (f *flags) resetConfig() error {
	if f.configPath == "" {
		path, err := config.RebuildConfigFile()
		if err != nil {
			return fmt.Errorf("resetting config: %w", err)
		}
		log.Infof("Config reset to defaults at %s", path)
		return nil
	}
	if err := utils.EnsureDir(filepath.Dir(f.configPath)); err != nil {
		return err
	}
	if err := config.SaveConfig(config.DefaultConfig(), f.configPath); err != nil {
		return fmt.Errorf("resetting config: %w", err)
	}
	log.Infof("Config reset to defaults at %s", f.configPath)
	return nil
}

// setup builds the engine and loads the active vocabularies.
func (f *flags) setup(ctx context.Context) (*app, error) {
	logger.Setup(os.Stderr, f.debug)

	cfg, path, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	vocabDir := resolveVocabularyDir(cfg.Vocabulary.Dir, path)
	log.Debugf("Using vocabulary dir at: %s", vocabDir)

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(vocab.NewDirLoader(vocabDir), opts)
	if err != nil {
		return nil, err
	}
	set, err := cfg.VocabularySet()
	if err != nil {
		return nil, err
	}
	if err := eng.SetVocabulary(ctx, set); err != nil {
		var loadErr *vocab.VocabularyLoadError
		if !errors.As(err, &loadErr) {
			_ = eng.Close()
			return nil, err
		}
		// already logged per vocabulary; an empty store still serves
	}
	return &app{cfg: cfg, configPath: path, engine: eng}, nil
}

// resolveVocabularyDir looks for dir next to the binary, in the working
// directory and next to the config file.
func resolveVocabularyDir(dir, configPath string) string {
	configDir := ""
	if configPath != "" {
		configDir = filepath.Dir(configPath)
	}
	pr, err := utils.NewPathResolver(configDir)
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
		return dir
	}
	return pr.GetVocabularyDir(dir)
}
