package api

// This file implements watch mode on top of fsnotify. The directory of each
// watched file is watched instead of the file itself: many editors save by
// writing a new file and renaming it over the old one, which would silently
// end a watch on the original inode.

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/esm2cjs/esm2cjs/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// A save often arrives as several events. Changes are only acted on once the
// file has been quiet this long.
const watchSettleTime = 50 * time.Millisecond

type watcher struct {
	fsw           *fsnotify.Watcher
	paths         map[string]bool
	onChange      func(path string)
	shouldLog     bool
	useColor      logger.UseColor
	stopOnce      sync.Once
	stopWaitGroup sync.WaitGroup
}

func watchImpl(options WatchOptions) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fsw:       fsw,
		paths:     make(map[string]bool),
		onChange:  options.OnChange,
		shouldLog: options.LogLevel == LogLevelInfo || options.LogLevel == LogLevelVerbose,
		useColor:  validateColor(options.Color),
	}

	dirs := make(map[string]bool)
	for _, path := range options.Paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.paths[absPath] = true
		if dir := filepath.Dir(absPath); !dirs[dir] {
			dirs[dir] = true
			if err := fsw.Add(dir); err != nil {
				fsw.Close()
				return nil, fmt.Errorf("cannot watch %q: %w", dir, err)
			}
		}
	}

	w.start()
	return w, nil
}

func (w *watcher) start() {
	w.stopWaitGroup.Add(1)

	go func() {
		defer w.stopWaitGroup.Done()

		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !w.isRelevant(event) {
					continue
				}
				changed, ok := w.settle(filepath.Clean(event.Name))
				if !ok {
					return
				}
				for _, path := range changed {
					w.rebuild(path)
				}

			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
					return fmt.Sprintf("%s[watch] %s%s\n", colors.Red, err.Error(), colors.Reset)
				})
			}
		}
	}()
}

func (w *watcher) isRelevant(event fsnotify.Event) bool {
	return w.paths[filepath.Clean(event.Name)] && event.Has(fsnotify.Write|fsnotify.Create)
}

func (w *watcher) rebuild(path string) {
	if w.shouldLog {
		logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
			return fmt.Sprintf("%s[watch] rebuild started (change: %q)%s\n", colors.Dim, path, colors.Reset)
		})
	}
	if w.onChange != nil {
		w.onChange(path)
	}
	if w.shouldLog {
		logger.PrintTextWithColor(os.Stderr, w.useColor, func(colors logger.Colors) string {
			return fmt.Sprintf("%s[watch] rebuild finished%s\n", colors.Dim, colors.Reset)
		})
	}
}

// settle collects changes to watched files until none has arrived for
// watchSettleTime. Events for other files in the same directories don't
// extend the wait. Paths are returned once each, in the order they first
// changed. It returns false if the watcher was closed in the meantime.
func (w *watcher) settle(first string) ([]string, bool) {
	changed := []string{first}
	seen := map[string]bool{first: true}
	timer := time.NewTimer(watchSettleTime)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil, false
			}
			if !w.isRelevant(event) {
				continue
			}
			if path := filepath.Clean(event.Name); !seen[path] {
				seen[path] = true
				changed = append(changed, path)
			}
			timer.Reset(watchSettleTime)
		case <-timer.C:
			return changed, true
		}
	}
}

func (w *watcher) Stop() {
	w.stopOnce.Do(func() {
		w.fsw.Close()
		w.stopWaitGroup.Wait()
	})
}
