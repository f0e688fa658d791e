package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

// Index implements storage.Index for BadgerDB.
// Records are scanned per namespace and ranked by cosine similarity.
type Index struct {
	backend      *Backend
	name         string
	deleteAllOff bool
	logger       *slog.Logger
}

var _ storage.Index = (*Index)(nil)

// IndexOption configures an Index.
type IndexOption func(*Index) error

// WithDeleteAllDisabled makes DeleteAll fail with storage.ErrDeleteAllUnsupported,
// matching hosted tiers that cannot delete by namespace.
func WithDeleteAllDisabled() IndexOption {
	return func(i *Index) error {
		i.deleteAllOff = true
		return nil
	}
}

// WithIndexLogger sets a custom logger.
// Default is slog.Default().
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(i *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIndex creates an Index named name on top of backend.
// The index itself is not created; see CreateIndex.
//
// Returns storage.Index interface to enforce abstraction.
func NewIndex(backend *Backend, name string, opts ...IndexOption) (storage.Index, error) {
	return newIndex(backend, name, opts...)
}

func newIndex(backend *Backend, name string, opts ...IndexOption) (*Index, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	if name == "" {
		return nil, fmt.Errorf("%w: index name required", core.ErrConfiguration)
	}

	idx := &Index{
		backend: backend,
		name:    name,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}
	idx.logger = idx.logger.With("component", "badger-index", "index", name)
	return idx, nil
}

// Close is a no-op; the backend is owned by the caller.
func (i *Index) Close() error {
	return nil
}

// DescribeIndex returns the index descriptor.
func (i *Index) DescribeIndex(ctx context.Context) (*core.IndexDescriptor, error) {
	if i.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var desc *core.IndexDescriptor
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		desc, err = i.readDescriptor(tx)
		return err
	}, false)
	return desc, err
}

// CreateIndex creates the index with the given dimension.
func (i *Index) CreateIndex(ctx context.Context, dimension int) error {
	if i.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if dimension < 1 {
		return fmt.Errorf("%w: dimension must be positive, got %d", storage.ErrInvalidQuery, dimension)
	}
	return i.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := i.readDescriptor(tx); err == nil {
			return fmt.Errorf("%w: %s", storage.ErrIndexExists, i.name)
		} else if !errors.Is(err, storage.ErrIndexNotFound) {
			return err
		}
		desc := &core.IndexDescriptor{Name: i.name, Dimension: dimension}
		if err := tx.Set(makeDescriptorKey(i.name), storage.MarshalIndexDescriptor(desc)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		i.logger.Info("created index", "dimension", dimension)
		return nil
	}, true)
}

// DropIndex deletes the index descriptor, every record of the index and
// its ingestion manifest.
func (i *Index) DropIndex(ctx context.Context) error {
	if _, err := i.DescribeIndex(ctx); err != nil {
		return err
	}
	err := i.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeDescriptorKey(i.name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	n, err := i.backend.DeletePrefix(makeIndexPrefix(i.name))
	if err != nil {
		return err
	}
	if _, err := i.backend.DeletePrefix(makeManifestIndexPrefix(i.name)); err != nil {
		return err
	}
	i.logger.Info("dropped index", "records", n)
	return nil
}

// Upsert writes records, replacing any with the same namespace and ID.
func (i *Index) Upsert(ctx context.Context, records ...*core.IndexRecord) error {
	desc, err := i.DescribeIndex(ctx)
	if err != nil {
		return err
	}
	for n, r := range records {
		if r == nil {
			return fmt.Errorf("%w: record %d is nil", storage.ErrInvalidQuery, n)
		}
		if len(r.Vector) != desc.Dimension {
			return fmt.Errorf("%w: record %d has %d dimensions, index %s expects %d",
				storage.ErrDimensionMismatch, n, len(r.Vector), i.name, desc.Dimension)
		}
	}
	if len(records) == 0 {
		return nil
	}

	err = i.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, r := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeRecordKey(i.name, r.Namespace, uint64(r.Id))
			if err := wb.Set(key, storage.MarshalIndexRecord(r)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	i.logger.Debug("upserted records", "count", len(records))
	return nil
}

// Query returns the topK records of namespace most similar to vector.
func (i *Index) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]*core.ScoredRecord, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK)
	}
	desc, err := i.DescribeIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(vector) != desc.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index %s expects %d",
			storage.ErrDimensionMismatch, len(vector), i.name, desc.Dimension)
	}

	var results []*core.ScoredRecord
	err = i.ForEachRecord(ctx, namespace, func(record *core.IndexRecord) error {
		results = append(results, &core.ScoredRecord{
			Record: record,
			Score:  cosineSimilarity(vector, record.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable so ties keep key order
	slices.SortStableFunc(results, func(a, b *core.ScoredRecord) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ForEachRecord calls fn for every record of namespace in key order.
func (i *Index) ForEachRecord(ctx context.Context, namespace string, fn func(*core.IndexRecord) error) error {
	if i.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return i.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeNamespacePrefix(i.name, namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.IndexRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalIndexRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// DeleteStale removes the records of namespace that came from one of
// sources and are not listed in keep.
func (i *Index) DeleteStale(ctx context.Context, namespace string, sources []string, keep []core.ID) (int, error) {
	if len(sources) == 0 {
		return 0, nil
	}
	if _, err := i.DescribeIndex(ctx); err != nil {
		return 0, err
	}

	bySource := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		bySource[s] = struct{}{}
	}
	kept := make(map[core.ID]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}

	var stale [][]byte
	err := i.ForEachRecord(ctx, namespace, func(record *core.IndexRecord) error {
		if _, ok := bySource[record.Metadata.Source]; !ok {
			return nil
		}
		if _, ok := kept[record.Id]; ok {
			return nil
		}
		stale = append(stale, makeRecordKey(i.name, namespace, uint64(record.Id)))
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err = i.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, key := range stale {
			if err := wb.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	i.logger.Debug("deleted stale records", "namespace", namespace, "records", len(stale))
	return len(stale), nil
}

// DeleteAll removes every record in namespace.
func (i *Index) DeleteAll(ctx context.Context, namespace string) error {
	if i.deleteAllOff {
		return storage.ErrDeleteAllUnsupported
	}
	if _, err := i.DescribeIndex(ctx); err != nil {
		return err
	}
	n, err := i.backend.DeletePrefix(makeNamespacePrefix(i.name, namespace))
	if err != nil {
		return err
	}
	i.logger.Info("deleted namespace", "namespace", namespace, "records", n)
	return nil
}

func (i *Index) readDescriptor(tx *badger.Txn) (*core.IndexDescriptor, error) {
	item, err := tx.Get(makeDescriptorKey(i.name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrIndexNotFound, i.name)
		}
		return nil, err
	}
	var desc *core.IndexDescriptor
	err = item.Value(func(val []byte) error {
		var err error
		desc, err = storage.UnmarshalIndexDescriptor(val)
		return err
	})
	return desc, err
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 if either has zero length.
func cosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for k := 0; k < n; k++ {
		dot += float64(a[k]) * float64(b[k])
		na += float64(a[k]) * float64(a[k])
		nb += float64(b[k]) * float64(b[k])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
