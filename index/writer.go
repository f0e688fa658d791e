package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

// Writer upserts embedded chunks into a vector store.
type Writer struct {
	store  storage.VectorStore
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer) error

// WithWriterLogger sets a custom logger.
// Default is slog.Default().
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWriter creates a Writer backed by store.
func NewWriter(store storage.VectorStore, opts ...WriterOption) (*Writer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	w := &Writer{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "index-writer")
	return w, nil
}

// Upsert writes one record per chunk into namespace. vectors[i] is the
// embedding of chunks[i]. Record IDs are derived from the namespace and the
// chunk, so writing the same chunk twice replaces the earlier record.
//
// Every failure, including a chunk/vector count mismatch, wraps
// core.ErrIndexWrite. Nothing is retried.
func (w *Writer) Upsert(ctx context.Context, namespace string, chunks []core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", core.ErrIndexWrite, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	records := make([]*core.IndexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &core.IndexRecord{
			Id:        core.RecordIDFor(namespace, chunk),
			Namespace: namespace,
			Text:      chunk.Content,
			Metadata:  chunk.Metadata,
			Vector:    vectors[i],
		}
	}

	if err := w.store.Upsert(ctx, records...); err != nil {
		return fmt.Errorf("%w: namespace %q: %w", core.ErrIndexWrite, namespace, err)
	}
	w.logger.Debug("upserted records", "namespace", namespace, "count", len(records))
	return nil
}

// Replace upserts chunks like Upsert and then removes every other record
// of namespace that came from the same sources, so a re-ingested document
// leaves no chunks of its previous version behind. Records of sources not
// present in chunks are untouched.
func (w *Writer) Replace(ctx context.Context, namespace string, chunks []core.Chunk, vectors [][]float32) error {
	if err := w.Upsert(ctx, namespace, chunks, vectors); err != nil {
		return err
	}

	var sources []string
	seen := make(map[string]struct{})
	keep := make([]core.ID, len(chunks))
	for i, chunk := range chunks {
		keep[i] = core.RecordIDFor(namespace, chunk)
		if _, ok := seen[chunk.Metadata.Source]; !ok {
			seen[chunk.Metadata.Source] = struct{}{}
			sources = append(sources, chunk.Metadata.Source)
		}
	}

	n, err := w.store.DeleteStale(ctx, namespace, sources, keep)
	if err != nil {
		return fmt.Errorf("%w: remove stale records in namespace %q: %w", core.ErrIndexWrite, namespace, err)
	}
	if n > 0 {
		w.logger.Info("removed stale records", "namespace", namespace, "sources", len(sources), "records", n)
	}
	return nil
}
