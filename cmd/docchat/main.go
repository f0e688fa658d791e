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
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/docchat"
	"github.com/poiesic/docchat/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLIApp() *cli.App {
	return &cli.App{
		Name:  "docchat",
		Usage: "Chat with a private document corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file (skipped if missing)",
				Value:   "docchat.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load, chunk, embed and index every supported file under a directory",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Directory to ingest",
						Required: true,
					},
					namespaceFlag(),
					&cli.StringSliceFlag{
						Name:  "ignore",
						Usage: "Path to leave out, as walked or relative to --dir (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "incremental",
						Usage: "Skip files already ingested into the namespace",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Ingest the files that loaded even if others failed to load",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Keep running and ingest files as they change",
					},
					maxRetriesFlag(),
					retryDelayFlag(),
				},
			},
			{
				Name:   "ingest-url",
				Usage:  "Fetch a web page and ingest its text",
				Action: ingestURLCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "URL to fetch",
						Required: true,
					},
					namespaceFlag(),
					maxRetriesFlag(),
					retryDelayFlag(),
				},
			},
			{
				Name:   "chat",
				Usage:  "Ask questions about the ingested documents",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "Ask a single question and exit; interactive when omitted",
					},
					namespaceFlag(),
					&cli.BoolFlag{
						Name:  "show-standalone",
						Usage: "Print the rewritten standalone question and retrieved sources",
					},
				},
			},
			{
				Name:   "erase",
				Usage:  "Delete every record of a namespace",
				Action: eraseCommand,
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.BoolFlag{
						Name:  "allow-recreate",
						Usage: "Drop and recreate the whole index if the namespace delete fails (erases ALL namespaces)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute every stored vector of a namespace with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					maxRetriesFlag(),
					retryDelayFlag(),
				},
			},
			{
				Name:   "search",
				Usage:  "Show the stored chunks most similar to a query, with scores",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Usage:    "Text to search for",
						Required: true,
					},
					namespaceFlag(),
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Drop results whose similarity is below this value",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to server.addr in the configuration)",
					},
					namespaceFlag(),
					&cli.BoolFlag{
						Name:  "allow-recreate",
						Usage: "Let delete-documents drop and recreate the whole index if the namespace delete fails",
					},
				},
			},
		},
	}
}

func namespaceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "namespace",
		Aliases: []string{"n"},
		Usage:   "Namespace to use (defaults to " + config.EnvStoreNamespace + ")",
	}
}

func maxRetriesFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "max-retries",
		Usage: "Maximum attempts for embedding and index write failures",
		Value: 3,
	}
}

func retryDelayFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "retry-delay",
		Usage: "Base delay for exponential backoff",
		Value: 1 * time.Second,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadConfig reads the configuration and applies command flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("namespace") {
		cfg.VectorStore.Namespace = c.String("namespace")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	return cfg, nil
}

func openApp(ctx context.Context, c *cli.Context) (*docchat.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	app, err := docchat.NewApp(ctx, cfg, docchat.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open docchat: %w", err)
	}
	return app, nil
}

func eraseCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	namespace := app.Config().VectorStore.Namespace
	msg, err := app.Erase(ctx, namespace, c.Bool("allow-recreate"))
	if err != nil {
		return fmt.Errorf("erase failed: %w", err)
	}
	fmt.Println(msg)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
