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
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docchat/httpapi"
	"github.com/urfave/cli/v2"
)

func serveCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	service, err := app.NewConversation()
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	pipeline, err := app.NewIngestionPipeline(nil)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	allowRecreate := c.Bool("allow-recreate")
	eraser := httpapi.EraserFunc(func(ctx context.Context, namespace string) (string, error) {
		return app.Erase(ctx, namespace, allowRecreate)
	})

	cfg := app.Config()
	server, err := httpapi.NewServer(service, pipeline, eraser,
		httpapi.WithNamespace(cfg.VectorStore.Namespace),
		httpapi.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return server.Run(ctx, cfg.Server.Addr)
}
