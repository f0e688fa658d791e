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

package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/docchat/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config, model string) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(config.APIKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-chat", "model", model),
	}, nil
}

// NewChatModel creates a chat model for config.ChatModel.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config, config.ChatModel)
}

// Complete returns the full completion for prompt.
func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.logger.Debug("requesting completion", "prompt_length", len(prompt))

	out, err := llms.GenerateFromSinglePrompt(ctx, m.client, prompt,
		llms.WithTemperature(m.temperature))
	if err != nil {
		m.logger.Error("completion failed", "err", err)
		return "", err
	}
	return out, nil
}

// Stream generates a completion for prompt and forwards each token to onToken.
func (m *ChatModel) Stream(ctx context.Context, prompt string, onToken ai.TokenFunc) error {
	m.logger.Debug("streaming completion", "prompt_length", len(prompt))

	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	_, err := m.client.GenerateContent(ctx, msgs,
		llms.WithTemperature(m.temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return onToken(ctx, string(chunk))
		}),
	)
	if err != nil {
		m.logger.Error("streaming failed", "err", err)
		return err
	}
	return nil
}
