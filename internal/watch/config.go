// Package watch reloads the config file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 50 * time.Millisecond

// Config watches path and calls onChange with the reloaded config after
// writes settle for debounce. The parent directory is watched so that
// editors replacing the file by rename are seen too. A file that fails to
// load is logged and skipped; onChange only sees valid configs.
// Config blocks until ctx is done.
func Config(ctx context.Context, path string, debounce time.Duration, onChange func(*config.Config)) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	log.Debugf("Watching config file %s", path)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)
		case <-timer.C:
			cfg, err := config.LoadConfig(path)
			if err != nil {
				log.Warnf("Ignoring config change: %v", err)
				continue
			}
			log.Debugf("Config reloaded from %s", path)
			onChange(cfg)
		}
	}
}
