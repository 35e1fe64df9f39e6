package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange whenever the settings file is changed by another
// process. Writes made through this Store are not reported. The parent
// directory is watched so editors that replace the file are still seen.
// Watch blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, onChange func(Settings)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	name := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			// Create covers the rename that replaces the file on Set.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			changed, err := s.reloadChanged(false)
			if err != nil {
				logger.Warn("settings reload failed", "path", s.path, "error", err)
				continue
			}
			if changed {
				logger.Info("settings file changed externally", "path", s.path)
				onChange(s.Get())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", "error", err)
		}
	}
}
