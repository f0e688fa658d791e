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

package ai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docchat/core"
)

// DefaultDimension is the vector width produced by text-embedding-ada-002.
const DefaultDimension = 1536

// Config holds configuration for AI service providers.
type Config struct {
	// BaseURL is the base URL of the OpenAI-compatible API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	BaseURL string

	// APIKey authenticates requests to BaseURL.
	APIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	EmbeddingModel string

	// ChatModel is the model that streams answers.
	ChatModel string

	// CondenseModel is the model that rewrites follow-up questions.
	// Defaults to ChatModel when empty.
	CondenseModel string

	// Temperature is the sampling temperature for both chat models.
	// Default: 0
	Temperature float64

	// Dimension is the expected embedding width.
	// Default: 1536
	Dimension int

	// EmbeddingBatchSize bounds how many texts are sent per embedding request.
	// Default: 512
	EmbeddingBatchSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithAPIKey sets the API credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the answering model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithCondenseModel sets the condensing model identifier.
func WithCondenseModel(model string) ConfigOption {
	return func(c *Config) {
		c.CondenseModel = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithDimension sets the expected embedding width.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithEmbeddingBatchSize sets the number of texts per embedding request.
func WithEmbeddingBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBatchSize = size
	}
}

// DefaultConfig returns a Config targeting the OpenAI API.
// The API key is left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://api.openai.com/v1",
		EmbeddingModel:     "text-embedding-ada-002",
		ChatModel:          "gpt-3.5-turbo",
		Temperature:        0,
		Dimension:          DefaultDimension,
		EmbeddingBatchSize: 512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithChatModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to BaseURL if missing and fills CondenseModel
// from ChatModel.
func (c *Config) Normalize() {
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/v1") {
		c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
		c.BaseURL = c.BaseURL + "/v1"
	}
	if c.CondenseModel == "" {
		c.CondenseModel = c.ChatModel
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Every failure wraps core.ErrConfiguration.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return fmt.Errorf("%w: ai config: BaseURL is required", core.ErrConfiguration)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: ai config: APIKey is required", core.ErrConfiguration)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: ai config: EmbeddingModel is required", core.ErrConfiguration)
	}
	if c.ChatModel == "" {
		return fmt.Errorf("%w: ai config: ChatModel is required", core.ErrConfiguration)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: ai config: Temperature must be between 0 and 2", core.ErrConfiguration)
	}
	if c.Dimension < 1 {
		return fmt.Errorf("%w: ai config: Dimension must be positive", core.ErrConfiguration)
	}
	if c.EmbeddingBatchSize < 1 {
		return fmt.Errorf("%w: ai config: EmbeddingBatchSize must be positive", core.ErrConfiguration)
	}
	return nil
}
