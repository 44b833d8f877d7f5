package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.NewLogger(&logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
	reloaded := make(chan *Config, 1)

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logger, func(c *Config) {
			select {
			case reloaded <- c:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)

	cfg.Cache.Enabled = true
	cfg.Cache.TTLSeconds = 42
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if !got.Cache.Enabled || got.Cache.TTLSeconds != 42 {
			t.Errorf("reloaded config %+v, want enabled cache with TTL 42", got.Cache)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop on cancellation")
	}
}

func TestWatchSkipsInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := DefaultConfig().SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.NewLogger(&logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
	reloaded := make(chan *Config, 4)

	go Watch(ctx, path, logger, func(c *Config) { reloaded <- c })
	time.Sleep(100 * time.Millisecond)

	// Break the file, then fix it. Only the valid write should land.
	if err := os.WriteFile(path, []byte(`{"cache": {"ttl_seconds": -5}}`), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	good := DefaultConfig()
	good.Cache.TTLSeconds = 99
	if err := good.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Cache.TTLSeconds != 99 {
			t.Errorf("reloaded TTL %d, want 99 (invalid write should be skipped)", got.Cache.TTLSeconds)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for valid reload")
	}
}
