// Package config loads docchat settings from a YAML file, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/chunking"
	"github.com/poiesic/docchat/core"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvOpenAIKey        = "OPENAI_API_KEY"
	EnvOpenAIBaseURL    = "OPENAI_BASE_URL"
	EnvStoreKey         = "VECTOR_STORE_API_KEY"
	EnvStoreEnvironment = "VECTOR_STORE_ENVIRONMENT"
	EnvStoreIndex       = "VECTOR_STORE_INDEX"
	EnvStoreNamespace   = "VECTOR_STORE_NAMESPACE"
	EnvDataDir          = "DOCCHAT_DATA_DIR"
	EnvChunkSize        = "CHUNK_SIZE"
	EnvChunkOverlap     = "CHUNK_OVERLAP"
)

const (
	defaultDataDir       = ".docchat"
	defaultTopK          = 4
	defaultHistoryWindow = 10
	defaultAddr          = ":8000"
)

// OpenAIConfig configures the model provider.
type OpenAIConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	CondenseModel  string  `yaml:"condense_model"`
	Temperature    float64 `yaml:"temperature"`
}

// VectorStoreConfig configures the vector index.
//
// The index lives under DataDir/Environment and is encrypted with a key
// derived from APIKey.
type VectorStoreConfig struct {
	APIKey               string `yaml:"api_key"`
	Environment          string `yaml:"environment"`
	Index                string `yaml:"index"`
	Namespace            string `yaml:"namespace"`
	DataDir              string `yaml:"data_dir"`
	DeleteAllUnsupported bool   `yaml:"delete_all_unsupported"`
}

// IngestionConfig configures chunking and loading.
type IngestionConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	Workers      int `yaml:"workers"`
}

// ChatConfig configures retrieval and history.
type ChatConfig struct {
	TopK          int `yaml:"top_k"`
	HistoryWindow int `yaml:"history_window"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root application configuration.
type Config struct {
	OpenAI      OpenAIConfig      `yaml:"openai"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Ingestion   IngestionConfig   `yaml:"ingestion"`
	Chat        ChatConfig        `yaml:"chat"`
	Server      ServerConfig      `yaml:"server"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:        aiDefaults.BaseURL,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			ChatModel:      aiDefaults.ChatModel,
			Temperature:    aiDefaults.Temperature,
		},
		VectorStore: VectorStoreConfig{DataDir: defaultDataDir},
		Ingestion: IngestionConfig{
			ChunkSize:    chunking.DefaultChunkSize,
			ChunkOverlap: chunking.DefaultChunkOverlap,
		},
		Chat: ChatConfig{
			TopK:          defaultTopK,
			HistoryWindow: defaultHistoryWindow,
		},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), the given .env files (".env"
// when none are named; missing files are skipped) and finally the process
// environment. Load does not validate; call Validate before using the result.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: read %s: %w", core.ErrConfiguration, path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %w", core.ErrConfiguration, path, err)
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: load %s: %w", core.ErrConfiguration, f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.OpenAI.APIKey, EnvOpenAIKey)
	setString(&c.OpenAI.BaseURL, EnvOpenAIBaseURL)
	setString(&c.VectorStore.APIKey, EnvStoreKey)
	setString(&c.VectorStore.Environment, EnvStoreEnvironment)
	setString(&c.VectorStore.Index, EnvStoreIndex)
	setString(&c.VectorStore.Namespace, EnvStoreNamespace)
	setString(&c.VectorStore.DataDir, EnvDataDir)
	if err := setInt(&c.Ingestion.ChunkSize, EnvChunkSize); err != nil {
		return err
	}
	return setInt(&c.Ingestion.ChunkOverlap, EnvChunkOverlap)
}

func (c *Config) applyDefaults() {
	if c.VectorStore.DataDir == "" {
		c.VectorStore.DataDir = defaultDataDir
	}
	if c.Ingestion.ChunkSize == 0 {
		c.Ingestion.ChunkSize = chunking.DefaultChunkSize
	}
	if c.Chat.TopK == 0 {
		c.Chat.TopK = defaultTopK
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
}

// Validate checks that every required setting is present. The error wraps
// core.ErrConfiguration and names the environment variable to set.
func (c *Config) Validate() error {
	required := []struct {
		value string
		env   string
	}{
		{c.OpenAI.APIKey, EnvOpenAIKey},
		{c.VectorStore.APIKey, EnvStoreKey},
		{c.VectorStore.Environment, EnvStoreEnvironment},
		{c.VectorStore.Index, EnvStoreIndex},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", core.ErrConfiguration, r.env)
		}
	}

	if c.Ingestion.ChunkSize < 1 {
		return fmt.Errorf("%w: %s must be positive", core.ErrConfiguration, EnvChunkSize)
	}
	if c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("%w: %s must be in [0, %s)", core.ErrConfiguration, EnvChunkOverlap, EnvChunkSize)
	}
	if c.Chat.TopK < 1 {
		return fmt.Errorf("%w: chat.top_k must be positive", core.ErrConfiguration)
	}
	if c.Chat.HistoryWindow < 0 {
		return fmt.Errorf("%w: chat.history_window cannot be negative", core.ErrConfiguration)
	}
	return c.AIConfig().Validate()
}

// AIConfig returns the provider configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithAPIKey(c.OpenAI.APIKey),
		ai.WithBaseURL(c.OpenAI.BaseURL),
		ai.WithEmbeddingModel(c.OpenAI.EmbeddingModel),
		ai.WithChatModel(c.OpenAI.ChatModel),
		ai.WithCondenseModel(c.OpenAI.CondenseModel),
		ai.WithTemperature(c.OpenAI.Temperature),
	)
}

// StorePath is the directory holding the vector index.
func (c *Config) StorePath() string {
	return filepath.Join(c.VectorStore.DataDir, c.VectorStore.Environment)
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrConfiguration, env, err)
	}
	*dst = n
	return nil
}
