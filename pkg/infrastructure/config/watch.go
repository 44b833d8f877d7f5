package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
)

// Watch monitors the config file and invokes onChange with a freshly
// loaded Config on every write. A reload that fails validation is logged
// and skipped, leaving the previous configuration active. Watch blocks
// until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *logging.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	logger.Info("watching config file", map[string]interface{}{"path": path})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors commonly save via rename, which surfaces as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				logger.Warn("config reload failed, keeping previous config",
					map[string]interface{}{"path": path, "error": err.Error()})
				continue
			}

			logger.Info("config reloaded", map[string]interface{}{"path": path})
			onChange(cfg)

			// An atomic save may have replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}
