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

// Package docchat wires the document store, the model provider and the
// ingestion and conversation pipelines into a single application handle.
package docchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/ai/openai"
	"github.com/poiesic/docchat/chunking"
	"github.com/poiesic/docchat/config"
	"github.com/poiesic/docchat/conversation"
	"github.com/poiesic/docchat/index"
	"github.com/poiesic/docchat/ingestion"
	"github.com/poiesic/docchat/loader"
	"github.com/poiesic/docchat/storage"
	"github.com/poiesic/docchat/storage/badger"
)

// App owns the store and the provider. Pipelines created from it share both.
type App struct {
	cfg      *config.Config
	backend  *badger.Backend
	index    storage.Index
	manifest storage.ManifestRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithProvider uses provider instead of building an OpenAI provider.
func WithProvider(provider ai.AIProvider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// WithInMemoryStore keeps the index in memory; nothing is written to disk.
func WithInMemoryStore() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// NewApp validates cfg, opens the index under cfg.StorePath() and creates
// it when missing. Configuration errors are reported before any disk or
// network access and wrap core.ErrConfiguration.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	options := &appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger.With("component", "app")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var backendOpts []badger.BackendOption
	if !options.inMemory {
		key := badger.DeriveEncryptionKey(cfg.VectorStore.APIKey)
		backendOpts = append(backendOpts, badger.WithEncryptionKey(key))
	}
	backend, err := badger.OpenBackend(cfg.StorePath(), options.inMemory, backendOpts...)
	if err != nil {
		return nil, err
	}

	indexOpts := []badger.IndexOption{badger.WithIndexLogger(options.logger)}
	if cfg.VectorStore.DeleteAllUnsupported {
		indexOpts = append(indexOpts, badger.WithDeleteAllDisabled())
	}
	idx, err := badger.NewIndex(backend, cfg.VectorStore.Index, indexOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	aiConfig := cfg.AIConfig()
	if err := ensureIndex(ctx, idx, aiConfig.Dimension, logger); err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &App{
		cfg:      cfg,
		backend:  backend,
		index:    idx,
		manifest: badger.NewManifestRepository(backend, cfg.VectorStore.Index),
		provider: provider,
		logger:   logger,
	}, nil
}

func ensureIndex(ctx context.Context, idx storage.Index, dimension int, logger *slog.Logger) error {
	desc, err := idx.DescribeIndex(ctx)
	switch {
	case err == nil:
		if desc.Dimension != dimension {
			return fmt.Errorf("%w: index %s has dimension %d, embeddings have %d",
				storage.ErrDimensionMismatch, desc.Name, desc.Dimension, dimension)
		}
		return nil
	case errors.Is(err, storage.ErrIndexNotFound):
		logger.Info("index not found, creating it", "dimension", dimension)
		return idx.CreateIndex(ctx, dimension)
	default:
		return err
	}
}

// Close releases the provider and the store.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.index.Close(); err != nil {
		a.logger.Error("error closing index", "err", err)
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Index returns the vector index.
func (a *App) Index() storage.Index {
	return a.index
}

// Manifest returns the ingestion manifest of the index.
func (a *App) Manifest() storage.ManifestRepository {
	return a.manifest
}

// Provider returns the model provider.
func (a *App) Provider() ai.AIProvider {
	return a.provider
}

// Registry returns a loader registry with every supported format.
func (a *App) Registry() *loader.Registry {
	return loader.DefaultRegistry()
}

// NewIngestionPipeline creates a pipeline writing to the index with the
// configured chunking. Call Release on the result when done.
func (a *App) NewIngestionPipeline(coordinatorOpts []ingestion.CoordinatorOption, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	if a.cfg.Ingestion.Workers > 0 {
		coordinatorOpts = append([]ingestion.CoordinatorOption{ingestion.WithPoolSize(a.cfg.Ingestion.Workers)}, coordinatorOpts...)
	}
	coordinatorOpts = append([]ingestion.CoordinatorOption{ingestion.WithCoordinatorLogger(a.logger)}, coordinatorOpts...)
	coordinator, err := ingestion.NewCoordinator(a.Registry(), coordinatorOpts...)
	if err != nil {
		return nil, err
	}

	chunker, err := chunking.New(
		chunking.WithChunkSize(a.cfg.Ingestion.ChunkSize),
		chunking.WithChunkOverlap(a.cfg.Ingestion.ChunkOverlap),
	)
	if err != nil {
		coordinator.Release()
		return nil, err
	}

	writer, err := index.NewWriter(a.index, index.WithWriterLogger(a.logger))
	if err != nil {
		coordinator.Release()
		return nil, err
	}

	opts = append([]ingestion.Option{
		ingestion.WithLogger(a.logger),
		ingestion.WithManifest(a.manifest),
		ingestion.WithWebLoader(loader.NewWebLoader(loader.WithWebLogger(a.logger))),
	}, opts...)
	pipeline, err := ingestion.NewPipeline(coordinator, chunker, a.provider.Embedder(), writer, opts...)
	if err != nil {
		coordinator.Release()
		return nil, err
	}
	return pipeline, nil
}

// NewConversation creates a conversation service over the configured
// namespace, top-k and history window.
func (a *App) NewConversation(opts ...conversation.Option) (*conversation.Service, error) {
	condenser, err := conversation.NewCondenser(a.provider.CondenseModel(),
		conversation.WithHistoryWindow(a.cfg.Chat.HistoryWindow),
		conversation.WithCondenserLogger(a.logger))
	if err != nil {
		return nil, err
	}
	retriever, err := conversation.NewRetriever(a.provider.Embedder(), a.index,
		conversation.WithNamespace(a.cfg.VectorStore.Namespace),
		conversation.WithTopK(a.cfg.Chat.TopK),
		conversation.WithRetrieverLogger(a.logger))
	if err != nil {
		return nil, err
	}
	streamer, err := conversation.NewStreamer(a.provider.ChatModel(),
		conversation.WithStreamerLogger(a.logger))
	if err != nil {
		return nil, err
	}
	opts = append([]conversation.Option{conversation.WithLogger(a.logger)}, opts...)
	return conversation.NewService(condenser, retriever, streamer, opts...)
}

// NewEraser creates an eraser for the index.
func (a *App) NewEraser(opts ...index.EraserOption) (*index.Eraser, error) {
	opts = append([]index.EraserOption{
		index.WithEraserLogger(a.logger),
		index.WithRecreateDimension(a.cfg.AIConfig().Dimension),
	}, opts...)
	return index.NewEraser(a.index, opts...)
}

// Erase deletes every record of namespace and forgets which files were
// ingested into it. allowRecreate enables the drop-and-recreate fallback,
// which also clears every other namespace.
func (a *App) Erase(ctx context.Context, namespace string, allowRecreate bool) (string, error) {
	var opts []index.EraserOption
	if allowRecreate {
		opts = append(opts, index.WithIndexRecreateFallback())
	}
	eraser, err := a.NewEraser(opts...)
	if err != nil {
		return "", err
	}
	msg, err := eraser.Erase(ctx, namespace)
	if err != nil {
		return "", err
	}
	if err := a.manifest.Forget(ctx, namespace); err != nil {
		return "", fmt.Errorf("forget manifest: %w", err)
	}
	return msg, nil
}
