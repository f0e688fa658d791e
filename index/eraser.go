package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/storage"
)

// DeletedMessage is returned by a successful Erase.
const DeletedMessage = "Successfully deleted"

// Eraser removes every record of a namespace.
type Eraser struct {
	index     storage.Index
	recreate  bool
	dimension int
	logger    *slog.Logger
}

// EraserOption configures an Eraser.
type EraserOption func(*Eraser) error

// WithIndexRecreateFallback lets Erase drop and recreate the whole index
// when the namespace-scoped delete fails. This removes every namespace.
func WithIndexRecreateFallback() EraserOption {
	return func(e *Eraser) error {
		e.recreate = true
		return nil
	}
}

// WithRecreateDimension sets the dimension used when the index is recreated.
// Default is ai.DefaultDimension.
func WithRecreateDimension(dimension int) EraserOption {
	return func(e *Eraser) error {
		if dimension < 1 {
			return fmt.Errorf("invalid recreate dimension %d", dimension)
		}
		e.dimension = dimension
		return nil
	}
}

// WithEraserLogger sets a custom logger.
// Default is slog.Default().
func WithEraserLogger(logger *slog.Logger) EraserOption {
	return func(e *Eraser) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEraser creates an Eraser for idx.
func NewEraser(idx storage.Index, opts ...EraserOption) (*Eraser, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	e := &Eraser{
		index:     idx,
		dimension: ai.DefaultDimension,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "index-eraser")
	return e, nil
}

// Erase deletes every record in namespace and returns DeletedMessage.
//
// If the namespace-scoped delete fails and the recreate fallback is enabled,
// the index is dropped and created again empty. Without the fallback the
// delete error is returned wrapped in ErrEraseFailed.
func (e *Eraser) Erase(ctx context.Context, namespace string) (string, error) {
	err := e.index.DeleteAll(ctx, namespace)
	if err == nil {
		e.logger.Info("erased namespace", "namespace", namespace)
		return DeletedMessage, nil
	}
	if !e.recreate {
		return "", fmt.Errorf("%w: namespace %q: %w", ErrEraseFailed, namespace, err)
	}

	e.logger.Warn("namespace delete failed, recreating index; all namespaces will be lost",
		"namespace", namespace, "error", err)

	if err := e.index.DropIndex(ctx); err != nil {
		return "", fmt.Errorf("%w: drop index: %w", ErrEraseFailed, err)
	}
	if err := e.index.CreateIndex(ctx, e.dimension); err != nil {
		return "", fmt.Errorf("%w: recreate index: %w", ErrEraseFailed, err)
	}
	e.logger.Info("recreated index", "dimension", e.dimension)
	return DeletedMessage, nil
}
