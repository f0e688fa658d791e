package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

// DefaultTopK is the number of records retrieved per question.
const DefaultTopK = 4

// Retriever finds the records most similar to a question.
type Retriever struct {
	embedder  ai.Embedder
	store     storage.VectorStore
	namespace string
	topK      int
	logger    *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever) error

// WithNamespace sets the namespace searched.
// Default is the empty namespace.
func WithNamespace(namespace string) RetrieverOption {
	return func(r *Retriever) error {
		r.namespace = namespace
		return nil
	}
}

// WithTopK sets the number of records retrieved.
// Default is DefaultTopK.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) error {
		if k < 1 {
			return fmt.Errorf("%w: top-k must be positive, got %d", core.ErrConfiguration, k)
		}
		r.topK = k
		return nil
	}
}

// WithRetrieverLogger sets a custom logger.
// Default is slog.Default().
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder ai.Embedder, store storage.VectorStore, opts ...RetrieverOption) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	r := &Retriever{
		embedder: embedder,
		store:    store,
		topK:     DefaultTopK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever", "namespace", r.namespace)
	return r, nil
}

// Retrieve returns up to top-k source documents for question in the order
// the store ranked them. Failures wrap core.ErrRetrieval.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]core.SourceDocument, error) {
	vector, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", core.ErrRetrieval, err)
	}

	results, err := r.store.Query(ctx, r.namespace, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrRetrieval, err)
	}

	r.logger.Debug("retrieved records", "count", len(results))
	return core.SourceDocumentsFrom(results), nil
}
