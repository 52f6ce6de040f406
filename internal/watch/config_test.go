package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), path))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Config(ctx, path, 20*time.Millisecond, func(cfg *config.Config) { changes <- cfg })
	}()
	// let the watcher register before writing
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[matching]\nresult_limit = 0\n"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[matching]\nkind = \"fuzzy\"\n"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, "fuzzy", cfg.Matching.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config write")
	}
	assert.Empty(t, changes)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestConfigIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan *config.Config, 1)
	go func() {
		_ = Config(ctx, path, 10*time.Millisecond, func(cfg *config.Config) { changes <- cfg })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644))
	select {
	case <-changes:
		t.Fatal("reloaded for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConfigMissingDirectory(t *testing.T) {
	err := Config(context.Background(), filepath.Join(t.TempDir(), "gone", "config.toml"), DefaultDebounce, func(*config.Config) {})
	assert.Error(t, err)
}
