// Package reembed recomputes the vectors of stored chunks from their text
// with the current embedder, for example after switching embedding models
// of the same dimension.
//
// Records are processed in batches with retry and exponential backoff.
// Record IDs, text and metadata are left unchanged.
package reembed
