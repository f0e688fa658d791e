package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Used for search queries.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenFunc receives streamed completion tokens in generation order.
// Returning an error stops the stream.
type TokenFunc func(ctx context.Context, token string) error

// ChatModel produces text completions from a prompt.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete returns the full completion for prompt.
	// Used for question condensation.
	Complete(ctx context.Context, prompt string) (string, error)

	// Stream generates a completion for prompt, calling onToken for each
	// token as it arrives. It returns when the model finishes, onToken fails
	// or ctx is cancelled.
	Stream(ctx context.Context, prompt string, onToken TokenFunc) error
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the model used to stream answers.
	ChatModel() ChatModel

	// CondenseModel returns the model used to rewrite follow-up questions.
	// It may be the same instance as ChatModel.
	CondenseModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
