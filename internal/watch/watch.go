// pattern: Imperative Shell

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"samplerun/internal/logging"
)

// DefaultDebounce batches editor save bursts into one re-run.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-runs samples whose files change on disk. It is a local
// development convenience; CI never uses it.
type Watcher struct {
	samples  []string
	debounce time.Duration
	logger   *logging.ScopedLogger
}

// New creates a watcher over the given sample directories.
func New(samples []string, debounce time.Duration, logger *logging.ScopedLogger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{samples: samples, debounce: debounce, logger: logger}
}

// Run blocks, invoking onChange with the owning sample directory each time
// files beneath it settle after a change. Returns when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func(sample string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, sample := range w.samples {
		if err := addTree(fsw, sample); err != nil {
			return fmt.Errorf("watching %s: %w", sample, err)
		}
	}
	w.logger.Info("watching samples", "count", len(w.samples))

	dirty := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			sample := w.owner(event.Name)
			if sample == "" {
				continue
			}
			// New subdirectories join the watch
			if event.Op&fsnotify.Create != 0 {
				_ = addTree(fsw, event.Name)
			}
			dirty[sample] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for sample := range dirty {
				w.logger.Info("sample changed", "sample", sample)
				onChange(sample)
			}
			clear(dirty)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// owner maps a changed path to the sample directory containing it.
func (w *Watcher) owner(path string) string {
	for _, sample := range w.samples {
		if path == sample || strings.HasPrefix(path, sample+string(filepath.Separator)) {
			return sample
		}
	}
	return ""
}

// addTree registers dir and every subdirectory beneath it. fsnotify
// watches are not recursive on their own.
func addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
}
