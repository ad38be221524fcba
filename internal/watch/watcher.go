// Package watch rebuilds the document whenever source files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

const defaultDebounce = 300 * time.Millisecond

// Options tunes watch behavior.
type Options struct {
	Debounce time.Duration // quiet period after the last change, default 300ms
	Every    time.Duration // periodic rebuild interval, 0 disables
}

// RebuildFunc performs one document rebuild.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers rebuilds when files in the source directory change.
// Builds are never concurrent: bursts of events collapse into a single
// pending rebuild request.
type Watcher struct {
	dir      string
	rebuild  RebuildFunc
	debounce time.Duration
	every    time.Duration
}

// New constructs a Watcher over dir.
func New(dir string, rebuild RebuildFunc, opts Options) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{dir: dir, rebuild: rebuild, debounce: debounce, every: opts.Every}
}

// Run performs an initial rebuild, then blocks handling change events until
// ctx is canceled. Cancellation is a normal shutdown and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	if st, err := os.Stat(w.dir); err != nil || !st.IsDir() {
		return fmt.Errorf("source dir not found or not a directory: %s", w.dir)
	}

	// Initial build. Watching continues when it fails so that fixing the
	// source triggers the next attempt.
	if err := w.rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	rebuildReq, trigger := w.setupDebouncer()
	w.startWorker(ctx, rebuildReq)

	if w.every > 0 {
		scheduler, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := scheduler.SchedulePeriodicRebuild(w.every, trigger); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
		slog.Info("Periodic rebuild enabled", slog.Duration("every", w.every))
	}

	slog.Info("Watching for changes", logfields.Dir(w.dir))
	return w.runLoop(ctx, watcher, trigger)
}

// runLoop handles filesystem events until shutdown.
func (w *Watcher) runLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// handleEvent triggers the debouncer for document source changes.
func (w *Watcher) handleEvent(ev fsnotify.Event, trigger func()) {
	if !isSourceEvent(ev.Name) {
		return
	}
	slog.Debug("Source change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// setupDebouncer creates the rebuild request channel and a trigger that
// collapses bursts of events into one request after the quiet period. The
// channel is never closed: a timer armed just before shutdown may fire after
// it, and that late send has to land in the buffer rather than panic.
func (w *Watcher) setupDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}

	return rebuildReq, trigger
}

// startWorker drains rebuild requests sequentially in the background. The
// request channel holds at most one entry, so changes arriving mid-rebuild
// collapse into a single follow-up run.
func (w *Watcher) startWorker(ctx context.Context, rebuildReq chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				w.processRebuild(ctx)
			}
		}
	}()
}

func (w *Watcher) processRebuild(ctx context.Context) {
	slog.Info("Change detected; rebuilding document")
	if err := w.rebuild(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
	}
}

// isSourceEvent reports whether the changed path is a document source.
// Hidden and editor temp files never count, even with a source extension.
func isSourceEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return false
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") {
		return false
	}
	switch filepath.Ext(base) {
	case ".tex", ".bib", ".sty":
		return true
	}
	return false
}
