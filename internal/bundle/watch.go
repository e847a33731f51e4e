// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/incidentmap/internal/ingest"
)

// Watch calls onChange after bundle files under dir stop changing for
// debounce. Subdirectories are watched too, including ones created later.
// Files a load would not read, such as a snapshot export or a history
// database kept in the same folder, never trigger onChange. Watch blocks
// until ctx is done and returns nil on cancellation.
func Watch(ctx context.Context, logger zerolog.Logger, dir string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := addTree(watcher, dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	// pending is nil while no change is waiting.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") || event.Op == fsnotify.Chmod {
				continue
			}
			relevant := isBundleFile(event.Name)
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// A new subdirectory has to be added explicitly.
					_ = addTree(watcher, event.Name)
					relevant = hasBundleFile(event.Name)
				}
			}
			if !relevant {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("data directory changed")
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

func isBundleFile(name string) bool {
	_, ok := ingest.Classify(name)
	return ok
}

// hasBundleFile reports whether a directory that appeared after the watch
// started already holds bundle files.
func hasBundleFile(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return fs.SkipAll
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isBundleFile(path) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
