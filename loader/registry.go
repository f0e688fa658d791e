package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/poiesic/docchat/core"
)

// DocumentLoader parses one file into documents.
// Implementations must be safe for concurrent use.
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]core.Document, error)
}

// LoaderFunc adapts a function to DocumentLoader.
type LoaderFunc func(ctx context.Context, path string) ([]core.Document, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) ([]core.Document, error) {
	return f(ctx, path)
}

// Registry maps file extensions to loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]DocumentLoader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]DocumentLoader)}
}

// DefaultRegistry creates a registry with every built-in format.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	text := NewTextLoader()
	r.Register(".txt", text)
	r.Register(".md", text)
	r.Register(".csv", NewCSVLoader())
	r.Register(".html", NewHTMLLoader())
	r.Register(".pdf", NewPDFLoader())
	r.Register(".docx", NewDocxLoader())
	r.Register(".pptx", NewPptxLoader())
	legacy := NewLegacyLoader()
	r.Register(".doc", legacy)
	r.Register(".ppt", legacy)
	return r
}

// Register maps ext, including its leading dot, to l.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(ext string, l DocumentLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[ext] = l
}

// Lookup returns the loader for ext.
// Matching is exact and case-sensitive.
func (r *Registry) Lookup(ext string) (DocumentLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	return l, nil
}

// Supports reports whether ext has a registered loader.
func (r *Registry) Supports(ext string) bool {
	_, err := r.Lookup(ext)
	return err == nil
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Load parses path with the loader registered for its extension.
// An unregistered extension returns core.ErrUnsupportedFormat naming it;
// any other failure wraps core.ErrLoad and names the path.
func (r *Registry) Load(ctx context.Context, path string) ([]core.Document, error) {
	l, err := r.Lookup(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	docs, err := l.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, path, err)
	}
	return docs, nil
}
