package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/docchat/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields and records
// every prompt it receives.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns Response.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// StreamFunc is called by Stream if set.
	// If nil, Stream emits Response split into whitespace-preserving words.
	StreamFunc func(ctx context.Context, prompt string, onToken ai.TokenFunc) error

	// Response is the canned answer used by the default behavior.
	Response string

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockChatModel creates a mock chat model that answers with response.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel(response string) *MockChatModel {
	return &MockChatModel{Response: response}
}

// Complete returns the canned response.
func (m *MockChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.record(prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return m.Response, nil
}

// Stream emits the canned response one word at a time.
// It stops early if ctx is cancelled or onToken fails.
func (m *MockChatModel) Stream(ctx context.Context, prompt string, onToken ai.TokenFunc) error {
	m.record(prompt)

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, onToken)
	}

	for _, tok := range SplitTokens(m.Response) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onToken(ctx, tok); err != nil {
			return err
		}
	}
	return nil
}

// CallCount returns the number of times any method was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockChatModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears the call count, recorded prompts and custom functions.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
	m.StreamFunc = nil
}

func (m *MockChatModel) record(prompt string) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

// SplitTokens splits s into tokens that concatenate back to s.
// Each token is a word followed by the whitespace after it.
func SplitTokens(s string) []string {
	var tokens []string
	for len(s) > 0 {
		i := strings.IndexAny(s, " \n\t")
		if i < 0 {
			tokens = append(tokens, s)
			break
		}
		j := i
		for j < len(s) && strings.ContainsRune(" \n\t", rune(s[j])) {
			j++
		}
		tokens = append(tokens, s[:j])
		s = s[j:]
	}
	return tokens
}
