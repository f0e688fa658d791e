// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	chat := mock.NewMockChatModel("Paris is the capital of France.")
//	chat.StreamFunc = func(ctx context.Context, prompt string, onToken ai.TokenFunc) error {
//	    return errors.New("upstream closed")
//	}
//
//	// Check call counts and prompts
//	count := chat.CallCount()
//	prompts := chat.Prompts()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockChatModel: Completes with, or streams word by word, a canned response
//   - MockProvider: Aggregates mock embedder and chat models
package mock
