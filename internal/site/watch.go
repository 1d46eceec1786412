package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/unisonweb/codeextra/internal/logfields"
)

const debounce = 300 * time.Millisecond

// Watch builds once, then rebuilds whenever something under the content
// directory changes, until ctx is cancelled. Build failures are logged and do
// not stop watching.
func (b *Builder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := addDirsRecursive(watcher, b.cfg.ContentDir); err != nil {
		return err
	}

	b.rebuild(ctx)

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(watcher, ev.Name); err != nil {
						b.logger.Warn("watching new directory failed", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}

			pending = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			b.logger.Warn("watcher error", logfields.Error(err))
		case <-pending:
			pending = nil
			b.logger.Info("change detected; rebuilding")
			b.rebuild(ctx)
		}
	}
}

func (b *Builder) rebuild(ctx context.Context) {
	if _, err := b.Build(ctx); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Warn("rebuild failed", logfields.Error(err))
	}
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}

		return nil
	})
}
