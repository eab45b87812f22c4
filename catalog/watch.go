package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the catalog file at path into store whenever it changes,
// until ctx is cancelled. The parent directory is watched so editors that
// replace the file by rename are picked up. A file that fails to load is
// logged and the previous catalog stays in effect.
func Watch(ctx context.Context, path string, store *Store) error {
	log := logger.GetLogger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	log.Infow("Watching catalog file", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			c, err := LoadFile(abs)
			if err != nil {
				log.Warnw("Catalog reload failed, keeping previous catalog", "path", abs, "error", err)
				continue
			}
			store.Swap(c)
			log.Infow("Catalog reloaded", "path", abs, "categories", len(c.names))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorw("Catalog watcher error", "error", err)
		}
	}
}
