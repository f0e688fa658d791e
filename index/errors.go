package index

import "errors"

var (
	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrEraseFailed is returned when a namespace could not be erased.
	ErrEraseFailed = errors.New("erase failed")
)
