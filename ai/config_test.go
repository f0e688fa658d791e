package ai

import (
	"errors"
	"testing"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.ChatModel)
	assert.Equal(t, 0.0, cfg.Temperature)
	assert.Equal(t, 1536, cfg.Dimension)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, DefaultDimension, cfg.Dimension)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithBaseURL("http://localhost:11434/v1"),
			WithAPIKey("sk-test"),
			WithEmbeddingModel("custom-embed"),
			WithChatModel("gpt-4o-mini"),
			WithCondenseModel("gpt-3.5-turbo"),
			WithTemperature(0.7),
			WithDimension(768),
			WithEmbeddingBatchSize(16),
		)

		assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
		assert.Equal(t, "gpt-3.5-turbo", cfg.CondenseModel)
		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, 768, cfg.Dimension)
		assert.Equal(t, 16, cfg.EmbeddingBatchSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected string
	}{
		{name: "already has /v1", baseURL: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", baseURL: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", baseURL: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty", baseURL: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BaseURL: tt.baseURL}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.BaseURL)
		})
	}

	t.Run("condense model defaults to chat model", func(t *testing.T) {
		cfg := &Config{ChatModel: "gpt-4o"}
		cfg.Normalize()
		assert.Equal(t, "gpt-4o", cfg.CondenseModel)
	})

	t.Run("explicit condense model kept", func(t *testing.T) {
		cfg := &Config{ChatModel: "gpt-4o", CondenseModel: "gpt-3.5-turbo"}
		cfg.Normalize()
		assert.Equal(t, "gpt-3.5-turbo", cfg.CondenseModel)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return NewConfig(WithAPIKey("sk-test"))
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, cfg.ChatModel, cfg.CondenseModel)
	})

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "missing base url", mutate: func(c *Config) { c.BaseURL = "" }, field: "BaseURL"},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = "" }, field: "APIKey"},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, field: "EmbeddingModel"},
		{name: "missing chat model", mutate: func(c *Config) { c.ChatModel = "" }, field: "ChatModel"},
		{name: "temperature too high", mutate: func(c *Config) { c.Temperature = 2.5 }, field: "Temperature"},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -1 }, field: "Temperature"},
		{name: "zero dimension", mutate: func(c *Config) { c.Dimension = 0 }, field: "Dimension"},
		{name: "zero batch size", mutate: func(c *Config) { c.EmbeddingBatchSize = 0 }, field: "EmbeddingBatchSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
