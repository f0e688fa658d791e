package reembed

import "errors"

var (
	// ErrIndexRequired is returned when NewReembedder gets a nil index.
	ErrIndexRequired = errors.New("index is required")

	// ErrEmbedderRequired is returned when NewReembedder gets a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
