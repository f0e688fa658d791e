// Package watch reports new and modified documents under a directory tree.
//
// Events are debounced: a burst of writes produces one batch once the tree
// has been quiet for the debounce interval. Removals are not reported.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch is emitted.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyWatching is returned when Watch is called twice on one Watcher.
var ErrAlreadyWatching = errors.New("watcher already running")

// Watcher monitors a directory tree with fsnotify.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
	debounce   time.Duration
	started    bool
	logger     *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithExtensions restricts events to files with the given extensions,
// matched exactly like the loader registry does. Default is every file.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) error {
		w.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			w.extensions[ext] = struct{}{}
		}
		return nil
	}
}

// WithDebounce sets the quiet period before a batch is emitted.
// Default is DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d <= 0 {
			d = DefaultDebounce
		}
		w.debounce = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a Watcher. Call Close when done.
func New(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(w); optErr != nil {
			fw.Close()
			return nil, optErr
		}
	}
	w.logger = w.logger.With("component", "watcher")
	return w, nil
}

// Watch monitors root and every non-hidden directory below it. Each value
// received from the returned channel is a sorted, de-duplicated batch of
// created or modified file paths. The channel closes when ctx is done or
// the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan []string, error) {
	if w.started {
		return nil, ErrAlreadyWatching
	}
	if err := w.addTree(root, nil); err != nil {
		return nil, err
	}
	w.started = true

	batches := make(chan []string, 1)
	go w.run(ctx, batches)
	return batches, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context, batches chan<- []string) {
	defer close(batches)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handle(event, pending) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			slices.Sort(batch)
			clear(pending)
			w.logger.Debug("emitting batch", "files", len(batch))
			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handle records event in pending and reports whether it was relevant.
func (w *Watcher) handle(event fsnotify.Event, pending map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if event.Has(fsnotify.Create) && isDir(event.Name) {
		// Files may land in a new directory before it is watched.
		before := len(pending)
		if err := w.addTree(event.Name, pending); err != nil {
			w.logger.Warn("failed to watch directory", "path", event.Name, "error", err)
		}
		return len(pending) > before
	}
	if !w.watched(event.Name) {
		return false
	}
	pending[event.Name] = struct{}{}
	return true
}

func (w *Watcher) watched(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	_, ok := w.extensions[filepath.Ext(path)]
	return ok
}

// addTree adds root and its non-hidden subdirectories. When pending is
// non-nil, watched files already present are recorded in it.
func (w *Watcher) addTree(root string, pending map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if pending != nil && d.Type().IsRegular() && w.watched(path) {
				pending[path] = struct{}{}
			}
			return nil
		}
		return w.watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
