package updates

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce = 2 * time.Second
	DefaultRetry    = 30 * time.Second
)

// Watcher calls Check once at start and again whenever the watched file
// settles after a change. The parent directory is watched so that editors
// which save by renaming a temp file over the original are still seen.
// A directory that does not exist yet is retried every Retry.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Retry    time.Duration
	Check    func(ctx context.Context) error
}

func NewWatcher(path string, debounce time.Duration, check func(context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{Path: path, Debounce: debounce, Retry: DefaultRetry, Check: check}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.Path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(target)
	var (
		retryTicker *time.Ticker
		retry       <-chan time.Time
	)
	if err := fw.Add(dir); err != nil {
		slog.Warn("updates: directory not watchable yet", "dir", dir, "error", err, "retry", w.retryEvery())
		retryTicker = time.NewTicker(w.retryEvery())
		retry = retryTicker.C
	} else {
		slog.Info("updates: watching", "path", target, "debounce", w.Debounce)
	}

	w.check(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if retryTicker != nil {
			retryTicker.Stop()
		}
	}()
	for {
		select {
		case <-retry:
			if err := fw.Add(dir); err != nil {
				slog.Debug("updates: directory still missing", "dir", dir, "error", err)
				continue
			}
			retryTicker.Stop()
			retry = nil
			slog.Info("updates: watching", "path", target, "debounce", w.Debounce)
			w.check(ctx)
		case <-ctx.Done():
			slog.Info("updates: watcher stopped", "path", target)
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("updates: watcher error", "path", target, "error", err)
		case <-fire:
			fire = nil
			w.check(ctx)
		}
	}
}

func (w *Watcher) retryEvery() time.Duration {
	if w.Retry <= 0 {
		return DefaultRetry
	}
	return w.Retry
}

func (w *Watcher) check(ctx context.Context) {
	if w.Check == nil {
		return
	}
	if err := w.Check(ctx); err != nil {
		slog.Warn("updates: check failed", "path", w.Path, "error", err)
	}
}
