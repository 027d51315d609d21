// Package watch rebuilds when declaration files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrAlreadyRunning is returned by Watch when the watcher is already
// running.
var ErrAlreadyRunning = errors.New("watcher already running")

// Config contains configuration for the Watcher.
type Config struct {
	// Dir is the declaration directory. Subdirectories are not watched,
	// matching how declarations are loaded.
	Dir string

	// Debounce is the quiet period after the last change before onChange
	// runs. Default: 200ms
	Debounce time.Duration

	// Match reports whether a changed file is a declaration. Nil matches
	// every file that is not hidden.
	Match func(name string) bool
}

// Watcher watches a declaration directory and calls back once changes
// settle. Callbacks never overlap: events arriving during a rebuild are
// collected and produce one more rebuild afterwards.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a watcher. Call Close when done.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory cannot be empty")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		config:  cfg,
		watcher: w,
		logger:  logger.With("component", "watch"),
	}, nil
}

// Watch blocks until ctx is cancelled, calling onChange with the sorted
// base names of the files changed since the previous call. An error from
// onChange is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.config.Dir, err)
	}
	defer w.watcher.Remove(w.config.Dir)

	w.logger.Info("watching declarations",
		"dir", w.config.Dir,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	d := NewDebouncer(w.config.Debounce)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			d.Add(filepath.Base(event.Name))

		case <-d.C():
			changed := d.Drain()
			if len(changed) == 0 {
				continue
			}
			w.logger.Info("declarations changed", "files", changed)
			if err := onChange(ctx, changed); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent determines if an event should trigger a rebuild.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if w.config.Match != nil {
		return w.config.Match(base)
	}
	return true
}

// Debouncer collects changed names and fires once no new name has been
// added for the interval. It is used from a single goroutine.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	pending  map[string]struct{}
}

// NewDebouncer creates a debouncer that has not fired.
func NewDebouncer(interval time.Duration) *Debouncer {
	t := time.NewTimer(interval)
	t.Stop()
	return &Debouncer{
		interval: interval,
		timer:    t,
		pending:  make(map[string]struct{}),
	}
}

// Add records a changed name and restarts the quiet period.
func (d *Debouncer) Add(name string) {
	d.pending[name] = struct{}{}
	d.timer.Reset(d.interval)
}

// C fires when the quiet period after the last Add has elapsed.
func (d *Debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Drain returns the collected names in sorted order and forgets them.
func (d *Debouncer) Drain() []string {
	names := make([]string, 0, len(d.pending))
	for name := range d.pending {
		names = append(names, name)
	}
	sort.Strings(names)
	clear(d.pending)
	return names
}

// Stop cancels a pending fire.
func (d *Debouncer) Stop() {
	d.timer.Stop()
}
