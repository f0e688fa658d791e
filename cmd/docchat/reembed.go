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

package main

import (
	"fmt"
	"os"

	"github.com/poiesic/docchat/reembed"
	"github.com/urfave/cli/v2"
)

func reembedCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	reembedder, err := reembed.NewReembedder(app.Index(), app.Provider().Embedder(), reembedConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	cfg := app.Config()
	fmt.Fprintf(os.Stderr, "Index: %s\n", cfg.VectorStore.Index)
	fmt.Fprintf(os.Stderr, "Namespace: %q\n", cfg.VectorStore.Namespace)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.OpenAI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	if _, err := reembedder.Run(ctx, cfg.VectorStore.Namespace); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
