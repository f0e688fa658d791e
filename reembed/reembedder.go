// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/ingestion"
	"github.com/poiesic/docchat/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder re-embeds every record of a namespace.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *RecordIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(index storage.Index, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(index, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewRecordIterator(index, config.BatchSize),
	}, nil
}

// Run re-embeds every record of namespace and returns how many were
// written. A failed batch stops the run; earlier batches stay written.
func (r *Reembedder) Run(ctx context.Context, namespace string) (int, error) {
	records, err := r.iterator.Records(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("failed to read records: %w", err)
	}

	totalRecords := len(records)
	if totalRecords == 0 {
		fmt.Fprintf(r.progress, "No records found in namespace %q (0 records)\n", namespace)
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d records (batch size: %d)\n",
		totalRecords, r.iterator.batchSize)

	tracker := ingestion.NewLabeledProgressTracker(r.progress, "Reembedding", "records", totalRecords, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.forEachBatch(ctx, records, func(batch []*core.IndexRecord) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return processed, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		totalRecords, elapsed.Round(time.Second), float64(totalRecords)/elapsed.Seconds())

	return processed, nil
}
