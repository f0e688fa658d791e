package ingestion

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/loader"
)

// Coordinator loads files in parallel on a bounded worker pool.
// Results are collected in completion order.
type Coordinator struct {
	registry *loader.Registry
	pool     *ants.Pool
	progress io.Writer
	logger   *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithPoolSize sets the number of files parsed concurrently.
// Default is runtime.NumCPU().
func WithPoolSize(size int) CoordinatorOption {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithProgress reports load progress to w.
func WithProgress(w io.Writer) CoordinatorOption {
	return func(c *Coordinator) error {
		c.progress = w
		return nil
	}
}

// WithCoordinatorLogger sets a custom logger.
// Default is slog.Default().
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a Coordinator that parses files with registry.
// Call Release when done.
func NewCoordinator(registry *loader.Registry, opts ...CoordinatorOption) (*Coordinator, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		registry: registry,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	c.logger = c.logger.With("component", "load-coordinator")
	return c, nil
}

// Release stops the worker pool.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// Load parses every regular file under root. Hidden files and directories
// are skipped, as is any path in ignored. Ignored paths are matched both as
// walked (joined onto root) and relative to root.
//
// Files without a registered loader fail with core.ErrUnsupportedFormat.
// When any file fails, the documents of the other files are returned with a
// *PartialLoadError.
func (c *Coordinator) Load(ctx context.Context, root string, ignored map[string]struct{}) ([]core.Document, error) {
	paths, err := enumerate(root, ignored)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, root, err)
	}
	c.logger.Debug("enumerated files", "root", root, "files", len(paths))
	return c.LoadFiles(ctx, paths)
}

// LoadFiles parses the given files. Failures are reported as in Load.
func (c *Coordinator) LoadFiles(ctx context.Context, paths []string) ([]core.Document, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	var tracker *ProgressTracker
	if c.progress != nil {
		tracker = NewProgressTracker(c.progress, len(paths), 1)
		tracker.Start()
		defer tracker.Finish()
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		docs     []core.Document
		failures []FileError
	)

	record := func(path string, loaded []core.Document, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures = append(failures, FileError{Path: path, Err: err})
		} else {
			docs = append(docs, loaded...)
		}
		if tracker != nil {
			tracker.Increment(1)
		}
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				return
			}
			loaded, err := c.registry.Load(ctx, path)
			if err != nil {
				c.logger.Warn("failed to load file", "path", path, "error", err)
			}
			record(path, loaded, err)
		})
		if submitErr != nil {
			wg.Done()
			record(path, nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, path, submitErr))
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.Info("loaded documents", "files", len(paths), "documents", len(docs), "failed", len(failures))
	if len(failures) > 0 {
		return docs, newPartialLoadError(failures)
	}
	return docs, nil
}

// enumerate lists the regular files under root in lexical order.
func enumerate(root string, ignored map[string]struct{}) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if IsIgnored(root, path, ignored) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// IsIgnored reports whether path, or path relative to root, is in ignored.
func IsIgnored(root, path string, ignored map[string]struct{}) bool {
	if len(ignored) == 0 {
		return false
	}
	if _, ok := ignored[path]; ok {
		return true
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		if _, ok := ignored[rel]; ok {
			return true
		}
	}
	return false
}
