package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/logger"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 300 * time.Millisecond

// watchProduct runs fn once, then again after every change to path, until
// ctx is cancelled. Run failures are reported and watching continues.
func watchProduct(ctx context.Context, cmd *cobra.Command, path string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	rerun := func() {
		if err := fn(); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
		cmd.Printf("\nWatching %s for changes (Ctrl+C to stop)...\n", path)
	}
	rerun()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProductChange(event, abs) {
				continue
			}
			logger.Debug("Watch: %s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-pending:
			pending = nil
			cmd.Printf("\n%s changed, regenerating...\n\n", path)
			rerun()
		}
	}
}

// isProductChange reports whether event writes or recreates the watched file.
func isProductChange(event fsnotify.Event, abs string) bool {
	if filepath.Clean(event.Name) != abs {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
