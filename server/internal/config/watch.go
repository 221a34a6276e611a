package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pranav79937-commits/Cloud-Based-Attendance-Management-system/server/internal/analytics"
)

// reloadDelay collapses the burst of events a single save produces
// (truncate, write, chmod, rename) into one reload.
var reloadDelay = 150 * time.Millisecond

// WatchPolicy watches the config file at path and calls onChange with the
// resolved threshold policy each time a save changes it. Saves that leave the
// policy as it was, or that fail to load or resolve, are logged and skipped;
// the caller keeps its current policy. Other keys only take effect on
// restart. It runs until ctx is cancelled.
func WatchPolicy(ctx context.Context, path string, onChange func(analytics.Policy)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()

	// The directory survives atomic saves that replace the file itself.
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	current, _ := loadPolicy(path)
	slog.Info("config: watching policy", "path", path, "policy", current.Name)

	pending := time.NewTimer(reloadDelay)
	pending.Stop()
	defer pending.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending.Reset(reloadDelay)

		case <-pending.C:
			next, err := loadPolicy(path)
			if err != nil {
				slog.Error("config: policy reload rejected", "path", path, "err", err)
				continue
			}
			if samePolicy(current, next) {
				slog.Debug("config: saved without policy change", "path", path)
				continue
			}
			slog.Info("config: policy changed", "from", current.Name, "to", next.Name)
			current = next
			onChange(next)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func loadPolicy(path string) (analytics.Policy, error) {
	cfg, err := Load(path)
	if err != nil {
		return analytics.Policy{}, err
	}
	return cfg.Policy.Resolve()
}

func samePolicy(a, b analytics.Policy) bool {
	return a.Name == b.Name && slices.Equal(a.Bands, b.Bands)
}
