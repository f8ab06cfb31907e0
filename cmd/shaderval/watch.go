package main

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce coalesces the bursts of events editors emit for one save.
const debounce = 100 * time.Millisecond

// runWatch validates paths once, then again whenever one of them is
// written, until ctx is done. Parent directories are watched so that
// editors replacing the file by rename are seen too.
func runWatch(ctx context.Context, c *checker, p *printer, log *zap.Logger, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = path
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}

	for _, path := range paths {
		p.print(c.checkFile(ctx, path))
	}
	log.Info("watching for changes", zap.Strings("paths", paths))

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			path, ok := targets[abs]
			if !ok {
				continue
			}
			log.Debug("change detected", zap.String("path", path), zap.Stringer("op", ev.Op))
			pending[path] = true
			if fire == nil {
				fire = time.After(debounce)
			}

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			clear(pending)
			slices.Sort(changed)
			for _, path := range changed {
				p.print(c.checkFile(ctx, path))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}
