package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordspell/internal/logger"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (configPath, vocabDir string) {
	t.Helper()
	dir := t.TempDir()
	vocabDir = filepath.Join(dir, "vocabularies")
	require.NoError(t, os.MkdirAll(vocabDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vocabDir, "english.txt"), []byte("spell\nspell-check\nspelling\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(vocabDir, "deutsch.txt"), []byte("spiel\n"), 0o644))

	configPath = filepath.Join(dir, "config.toml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), configPath))
	return configPath, vocabDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	configPath, vocabDir := fixture(t)

	out, err := execute(t, "query", "spel", "--config", configPath, "--vocab-dir", vocabDir,
		"--matching", "prefix", "--vocabulary", "english")
	require.NoError(t, err)
	assert.Equal(t, " 1. spell (english)\n 2. spelling (english)\n 3. spell-check (english)\n", out)

	out, err = execute(t, "query", "speling", "--config", configPath, "--vocab-dir", vocabDir,
		"--vocabulary", "deutsch,english", "-l", "1")
	require.NoError(t, err)
	assert.Equal(t, " 1. spelling (english)\n", out)
}

func TestQueryCommandRejectsBadFlags(t *testing.T) {
	configPath, vocabDir := fixture(t)

	_, err := execute(t, "query", "spel", "--config", configPath, "--vocab-dir", vocabDir, "--matching", "phonetic")
	assert.ErrorIs(t, err, vocab.ErrInvalidInput)

	_, err = execute(t, "query", "spel", "--config", configPath, "--vocab-dir", vocabDir, "--vocabulary", "klingon")
	assert.ErrorIs(t, err, vocab.ErrInvalidInput)

	_, err = execute(t, "query", "--config", configPath)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
	assert.Contains(t, out, gh)
}

func TestResetConfigFlag(t *testing.T) {
	configPath, vocabDir := fixture(t)
	cfg := config.DefaultConfig()
	cfg.Matching.Kind = "prefix"
	require.NoError(t, config.SaveConfig(cfg, configPath))

	out, err := execute(t, "query", "spel", "--config", configPath, "--vocab-dir", vocabDir,
		"--vocabulary", "english", "--reset-config")
	require.NoError(t, err)
	assert.Equal(t, " 1. spell (english)\n", out)

	saved, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), saved)
}

func TestResetConfigFlagDefaultPath(t *testing.T) {
	_, vocabDir := fixture(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := execute(t, "query", "spel", "--vocab-dir", vocabDir, "--vocabulary", "english", "--reset-config")
	require.NoError(t, err)

	saved, err := config.LoadConfig(filepath.Join(home, ".config", "wordspell", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), saved)
}

func TestReplSavesCommands(t *testing.T) {
	configPath, vocabDir := fixture(t)

	out, err := executeWithInput(t, ":m fuzzy\n:q\n", "repl", "--save", "--config", configPath,
		"--vocab-dir", vocabDir, "--vocabulary", "english", "--limit", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Matcher set to")

	saved, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", saved.Matching.Kind)
	// flag overrides stay out of the file
	assert.Equal(t, config.DefaultConfig().Matching.ResultLimit, saved.Matching.ResultLimit)
	assert.Equal(t, config.DefaultConfig().Vocabulary, saved.Vocabulary)
}

func TestReloadWarnsOnVocabularyDirChange(t *testing.T) {
	configPath, vocabDir := fixture(t)
	f := &flags{configPath: configPath, vocabDir: vocabDir, vocabulary: "english"}
	ctx := context.Background()
	a, err := f.setup(ctx)
	require.NoError(t, err)
	defer a.engine.Close()

	var logs bytes.Buffer
	logger.Setup(&logs, false)
	t.Cleanup(func() { logger.Setup(os.Stderr, false) })

	cfg := *a.cfg
	cfg.Vocabulary.Dir = filepath.Join(t.TempDir(), "elsewhere")
	cfg.Vocabulary.Active = []string{"deutsch"}
	require.NoError(t, a.reload(ctx, &cfg))

	assert.Contains(t, logs.String(), "takes effect on restart")
	// still loaded from the startup dir
	assert.Equal(t, 1, a.engine.Stats().Words)
	assert.Equal(t, cfg.Vocabulary.Dir, a.cfg.Vocabulary.Dir)
}
