package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/engine"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string) (string, *engine.Engine) {
	t.Helper()
	return runSaving(t, input, "")
}

func runSaving(t *testing.T, input, savePath string) (string, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(vocab.MapLoader{
		vocab.English: {"spell", "spell-check", "spelling"},
		vocab.Deutsch: {"spiel", "spielen"},
	}, engine.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	require.NoError(t, eng.SetVocabulary(context.Background(), vocab.Set{vocab.English}))

	var out bytes.Buffer
	h := NewInputHandler(eng, strings.NewReader(input), &out, 60)
	if savePath != "" {
		h.SaveTo(savePath)
	}
	require.NoError(t, h.Start(context.Background()))
	return out.String(), eng
}

func TestQueryPrintsNumberedResults(t *testing.T) {
	out, _ := run(t, "spel\n")
	assert.Contains(t, out, "Found 1 suggestions for 'spel'")
	assert.Contains(t, out, " 1. spell")
	assert.Contains(t, out, "english")
}

func TestCommands(t *testing.T) {
	out, eng := run(t, ":m prefix\nspel\n:v deutsch\nspi\n:s\n:q\nspell\n")

	assert.Contains(t, out, "Matcher set to prefix")
	assert.Contains(t, out, " 3. spell-check")
	assert.Contains(t, out, "Vocabulary set to [deutsch], 2 words")
	assert.Contains(t, out, " 2. spielen")
	assert.Contains(t, out, "cache")
	// nothing after :q runs
	assert.NotContains(t, out, "suggestions for 'spell'")

	st := eng.Stats()
	assert.Equal(t, match.Prefix, st.Matching)
	assert.Equal(t, vocab.Set{vocab.Deutsch}, st.Vocabulary)
}

func TestBadInputIsReported(t *testing.T) {
	out, eng := run(t, ":m phonetic\n:v klingon\n:x\nzzzzzzzz\n"+strings.Repeat("a", 61)+"\n")

	assert.Contains(t, out, "Cannot switch matcher")
	assert.Contains(t, out, "Cannot switch vocabulary")
	assert.Contains(t, out, "Unknown command :x")
	assert.Contains(t, out, "No suggestions found for 'zzzzzzzz'")
	assert.Contains(t, out, "Query too long")
	assert.Equal(t, match.Correction, eng.Stats().Matching)
}

func TestCommandsAreSavedToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Matching.ResultLimit = 4
	require.NoError(t, config.SaveConfig(cfg, path))

	_, _ = runSaving(t, ":m prefix\n:v deutsch,english\n:m phonetic\n", path)

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "prefix", saved.Matching.Kind)
	assert.Equal(t, []string{"deutsch", "english"}, saved.Vocabulary.Active)
	assert.Equal(t, 4, saved.Matching.ResultLimit)
}
