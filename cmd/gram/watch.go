package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay collapses the bursts of events editors emit on save.
const debounceDelay = 200 * time.Millisecond

// watch re-validates files as they change until ctx is done. The parent
// directories are watched rather than the files, so saves that replace a
// file by renaming are still seen. New files with a gram extension in
// those directories are picked up too.
func (a *app) watch(ctx context.Context, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := make(map[string]bool)

	for _, f := range files {
		if f == "-" {
			continue
		}

		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		dirs[dir] = true

		a.logger.Debug("watching", zap.String("dir", dir))
	}

	_, _ = fmt.Fprintf(a.stderr, "watching %d directories for changes\n", len(dirs))

	var (
		pending = make(map[string]bool)
		timer   = time.NewTimer(debounceDelay)
	)

	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !a.isGramFile(event.Name) {
				continue
			}

			a.logger.Debug("file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			pending[event.Name] = true

			timer.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			a.logger.Error("File watcher error", zap.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}

			clear(pending)
			slices.Sort(changed)

			for _, f := range changed {
				ok, err := a.validateFile(f)
				if err != nil {
					// The file may have been removed again before the timer fired.
					a.logger.Warn("skipping file", zap.String("file", f), zap.Error(err))

					continue
				}

				if ok {
					_, _ = fmt.Fprintf(a.stderr, "%s: ok\n", f)
				}
			}
		}
	}
}

func (a *app) isGramFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	return slices.Contains(a.config.FileExtensions(), ext)
}
