package consult

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brunokim/logic-embed/prolog"
)

// Default wait after a write before reporting a change, absorbing
// editors that save in several syscalls.
const defaultDebounce = 100 * time.Millisecond

// Options configures Changes and Watch.
type Options struct {
	// Logger receives watch events and reload failures. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// Debounce is how long to wait after the last write before
	// reporting a change. Zero means defaultDebounce.
	Debounce time.Duration
}

// Changes watches paths and delivers the files changed on disk as
// debounced, sorted batches, until ctx is done. The channel closes when
// the watch ends. The caller decides when to reload, which keeps
// session use single-threaded.
func Changes(ctx context.Context, paths []string, opts Options) (<-chan []string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	for _, path := range paths {
		if err := w.Add(path); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	logger.Debug("watching", slog.Int("files", len(paths)))

	ch := make(chan []string, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		pending := make(map[string]bool)
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				logger.Debug("file changed",
					slog.String("path", event.Name),
					slog.String("op", event.Op.String()))
				pending[event.Name] = true
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Stop()
					timer.Reset(debounce)
				}
				timerC = timer.C
			case <-timerC:
				timerC = nil
				batch := make([]string, 0, len(pending))
				for path := range pending {
					batch = append(batch, path)
				}
				sort.Strings(batch)
				clear(pending)
				select {
				case ch <- batch:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watch error", slog.String("error", err.Error()))
			}
		}
	}()
	return ch, nil
}

// Watch loads each path into s, then blocks re-consulting files as they
// change, until ctx is done. A reload asserts the file's clauses again
// after the existing ones; it does not retract earlier definitions, so
// sessions that reload fact files repeatedly will accumulate duplicates.
//
// Reload failures are logged and do not stop the watch. Watch returns
// ctx.Err() on cancellation.
func Watch(ctx context.Context, s *prolog.Session, paths []string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := Files(s, paths...); err != nil {
		return err
	}
	changes, err := Changes(ctx, paths, opts)
	if err != nil {
		return err
	}
	for batch := range changes {
		for _, path := range batch {
			if err := Files(s, path); err != nil {
				logger.Error("reload failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("reloaded", slog.String("path", path))
		}
	}
	return ctx.Err()
}
