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

	"github.com/poiesic/docchat/ai"
)

// NewMemoryIndex creates an in-memory index named "test" with the default
// embedding dimension, for testing.
// Returns the index, its backend, and error. Caller must close the backend.
func NewMemoryIndex(opts ...IndexOption) (*Index, *Backend, error) {
	return NewMemoryIndexWithDimension(ai.DefaultDimension, opts...)
}

// NewMemoryIndexWithDimension is NewMemoryIndex with a custom dimension.
func NewMemoryIndexWithDimension(dimension int, opts ...IndexOption) (*Index, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	idx, err := newIndex(backend, "test", opts...)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	if err := idx.CreateIndex(context.Background(), dimension); err != nil {
		backend.Close()
		return nil, nil, err
	}

	return idx, backend, nil
}
