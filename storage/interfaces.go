package storage

import (
	"context"
	"time"

	"github.com/poiesic/docchat/core"
)

// VectorStore holds embedded chunks partitioned by namespace and answers
// similarity queries over them.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Upsert writes records into the index, replacing any record with the same
	// ID in the same namespace. Every vector must match the index dimension.
	// Returns ErrIndexNotFound if the index does not exist and
	// ErrDimensionMismatch if any vector has the wrong width.
	Upsert(ctx context.Context, records ...*core.IndexRecord) error

	// Query returns up to topK records of namespace ordered by similarity to
	// vector, highest first.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]*core.ScoredRecord, error)

	// DeleteStale removes every record of namespace whose metadata source is
	// one of sources, except the records whose ID is in keep. It returns the
	// number of records removed.
	DeleteStale(ctx context.Context, namespace string, sources []string, keep []core.ID) (int, error)

	// DeleteAll removes every record in namespace.
	// Returns ErrDeleteAllUnsupported if the deployment cannot delete by namespace.
	DeleteAll(ctx context.Context, namespace string) error

	// Close closes the store and releases resources.
	Close() error
}

// IndexManager manages the lifecycle of the index a VectorStore writes to.
type IndexManager interface {
	// DescribeIndex returns the index descriptor.
	// Returns ErrIndexNotFound if the index does not exist.
	DescribeIndex(ctx context.Context) (*core.IndexDescriptor, error)

	// CreateIndex creates the index with the given dimension.
	// Returns ErrIndexExists if it already exists.
	CreateIndex(ctx context.Context, dimension int) error

	// DropIndex deletes the index and every record in every namespace.
	// Returns ErrIndexNotFound if the index does not exist.
	DropIndex(ctx context.Context) error
}

// RecordLister enumerates stored records.
type RecordLister interface {
	// ForEachRecord calls fn for every record of namespace in key order.
	// Iteration stops at the first error fn returns, which is returned.
	// fn must not write to the store.
	ForEachRecord(ctx context.Context, namespace string, fn func(*core.IndexRecord) error) error
}

// Index combines record access with index lifecycle management.
type Index interface {
	VectorStore
	RecordLister
	IndexManager
}

// ManifestRepository remembers which source files have been ingested into
// each namespace, so repeated ingestion runs can skip them.
type ManifestRepository interface {
	// MarkIngested records paths as ingested into namespace at the current time.
	MarkIngested(ctx context.Context, namespace string, paths ...string) error

	// IngestedPaths returns every path recorded for namespace with the time
	// it was last ingested.
	IngestedPaths(ctx context.Context, namespace string) (map[string]time.Time, error)

	// Forget removes every entry for namespace.
	Forget(ctx context.Context, namespace string) error
}
