package reembed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/retry"
	"github.com/poiesic/docchat/storage"
)

// BatchProcessor embeds the text of a batch of records and writes the
// records back with their new vectors.
type BatchProcessor struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a processor that retries embedding and writing
// up to maxRetries times each.
func NewBatchProcessor(store storage.VectorStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds records in place and upserts them.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	var embeddings [][]float32
	err := retry.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("%w: after %d attempts: %w", core.ErrEmbedding, bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("%w: expected %d vectors, got %d", core.ErrEmbedding, len(records), len(embeddings))
	}

	updated := make([]*core.IndexRecord, len(records))
	for i, record := range records {
		r := *record
		r.Vector = embeddings[i]
		updated[i] = &r
	}

	err = retry.RetryIf(ctx, func() error {
		return bp.store.Upsert(ctx, updated...)
	}, bp.maxRetries, bp.retryBaseDelay, func(err error) bool {
		return !errors.Is(err, storage.ErrDimensionMismatch)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIndexWrite, err)
	}
	return nil
}
