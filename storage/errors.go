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

package storage

import "errors"

var (
	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrIndexNotFound indicates that the configured index does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexExists indicates an attempt to create an index that already exists.
	ErrIndexExists = errors.New("index already exists")

	// ErrDimensionMismatch indicates a vector whose width differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrDeleteAllUnsupported indicates the store cannot delete a whole namespace.
	ErrDeleteAllUnsupported = errors.New("delete all is not supported by this index")
)
