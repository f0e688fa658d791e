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

package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docchat/storage"
)

// ManifestRepository implements storage.ManifestRepository for BadgerDB.
// Entries are scoped to one index so that dropping and recreating an
// index under a different name starts from an empty manifest.
type ManifestRepository struct {
	backend *Backend
	index   string
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new ManifestRepository for index.
func NewManifestRepository(backend *Backend, index string) *ManifestRepository {
	return &ManifestRepository{
		backend: backend,
		index:   index,
	}
}

// MarkIngested records paths as ingested into namespace.
func (r *ManifestRepository) MarkIngested(ctx context.Context, namespace string, paths ...string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	now := time.Now().UTC().UnixMicro()
	value := make([]byte, varint.Int64.Size(now))
	varint.Int64.Marshal(now, value)

	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, p := range paths {
			if err := wb.Set(makeManifestKey(r.index, namespace, p), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// IngestedPaths returns every path recorded for namespace.
// Returns an empty map if nothing has been recorded.
func (r *ManifestRepository) IngestedPaths(ctx context.Context, namespace string) (map[string]time.Time, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	prefix := makeManifestPrefix(r.index, namespace)
	paths := make(map[string]time.Time)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			path := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				micros, _, err := varint.Int64.Unmarshal(val)
				if err != nil {
					return err
				}
				paths[path] = time.UnixMicro(micros).UTC()
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Forget removes every entry for namespace.
func (r *ManifestRepository) Forget(ctx context.Context, namespace string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	_, err := r.backend.DeletePrefix(makeManifestPrefix(r.index, namespace))
	return err
}
