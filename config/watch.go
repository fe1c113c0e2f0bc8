package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce lets editors finish writing before the file is read.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls fn with the new configuration each time the file at path
// changes, until ctx is done. Files that fail to load are logged and
// skipped.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(*Config)) error {
	dir := filepath.Dir(path)
	file := filepath.Join(dir, filepath.Base(path))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "can't watch config")
	}
	defer w.Close()
	// The directory is watched since editors replace files by renaming.
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "can't watch %s", dir)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		c, err := Load(path)
		if err != nil {
			logger.Warn("config not reloaded", "err", err)
			return
		}
		logger.Info("config reloaded", "path", path)
		fn(c)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != file || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
