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

	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

const (
	// DefaultBatchSize is the default number of records to fetch in each batch
	DefaultBatchSize = 100
)

// RecordIterator hands the records of a namespace to a callback in batches.
type RecordIterator struct {
	lister    storage.RecordLister
	batchSize int
}

// NewRecordIterator creates an iterator. A non-positive batchSize means
// DefaultBatchSize.
func NewRecordIterator(lister storage.RecordLister, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		lister:    lister,
		batchSize: batchSize,
	}
}

// Records returns every record of namespace.
func (it *RecordIterator) Records(ctx context.Context, namespace string) ([]*core.IndexRecord, error) {
	var records []*core.IndexRecord
	err := it.lister.ForEachRecord(ctx, namespace, func(r *core.IndexRecord) error {
		records = append(records, r)
		return nil
	})
	return records, err
}

// ForEach calls fn with consecutive batches of the records of namespace.
// The records are read up front so fn may write them back.
func (it *RecordIterator) ForEach(ctx context.Context, namespace string, fn func([]*core.IndexRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := it.Records(ctx, namespace)
	if err != nil {
		return err
	}
	return it.forEachBatch(ctx, records, fn)
}

func (it *RecordIterator) forEachBatch(ctx context.Context, records []*core.IndexRecord, fn func([]*core.IndexRecord) error) error {
	for i := 0; i < len(records); i += it.batchSize {
		end := min(i+it.batchSize, len(records))

		if err := fn(records[i:end]); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
