package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Settle is how long the file must stay quiet after a write before reload
// runs. os.WriteFile truncates before it writes, and both steps surface as
// Write events; reloading on the first one would read an empty file.
const Settle = 100 * time.Millisecond

// File monitors path and calls reload once the file has been written or
// recreated and then left alone for Settle. It runs until ctx is cancelled.
//
// If reload returns an error it is logged and the watch keeps running.
func File(ctx context.Context, path string, reload func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: new watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch: add %q: %w", path, err)
	}
	slog.Info("watch: watching for changes", "path", path)

	timer := time.NewTimer(Settle)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)
			timer.Reset(Settle)
			pending = timer.C

		case <-pending:
			pending = nil
			if err := reload(); err != nil {
				slog.Error("watch: reload failed, keeping previous state", "path", path, "err", err)
			} else {
				slog.Info("watch: reloaded", "path", path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch: watcher error", "path", path, "err", err)
		}
	}
}
