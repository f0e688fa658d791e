// Package index writes embedded chunks to the vector index and erases them.
//
// Writer turns chunks plus their vectors into index records and upserts them
// as one batch. Eraser removes every record of a namespace and, when the
// caller opts in, falls back to dropping and recreating the whole index for
// stores that cannot delete by namespace.
//
// Neither type retries. Transient failures surface to the caller wrapped in
// core.ErrIndexWrite (writes) or ErrEraseFailed (erasure).
package index
