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

// Package storage provides the storage abstraction layer for docchat.
//
// This package defines the vector index and manifest interfaces that decouple
// the ingestion and conversation pipelines from a particular storage engine.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return interfaces:
//
//	index, err := badger.NewIndex(backend, "docs")  // returns storage.Index
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Architecture
//
//   - VectorStore: Namespaced upsert, similarity query and delete-all
//   - IndexManager: Describe, create and drop the index itself
//   - Index: VectorStore and IndexManager together
//   - ManifestRepository: Files already ingested per namespace
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	index, err := badger.NewIndex(backend, "docs")
//	results, err := index.Query(ctx, "", vector, 4)
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation. Pass
// context.Background() for operations without specific timeout requirements.
package storage
