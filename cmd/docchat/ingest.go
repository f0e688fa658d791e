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
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/docchat/ingestion"
	"github.com/poiesic/docchat/retry"
	"github.com/poiesic/docchat/watch"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	dir := c.String("dir")
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	maxRetries := c.Int("max-retries")
	if maxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	retryDelay := c.Duration("retry-delay")

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	pipeline, err := app.NewIngestionPipeline([]ingestion.CoordinatorOption{ingestion.WithProgress(os.Stderr)})
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	namespace := app.Config().VectorStore.Namespace
	ignored := ignoredSet(c.StringSlice("ignore"))
	opts := &ingestion.IngestOptions{
		Namespace:       namespace,
		Ignored:         ignored,
		Incremental:     c.Bool("incremental"),
		ContinueOnError: c.Bool("continue-on-error"),
	}

	fmt.Fprintf(os.Stderr, "Directory: %s\n", dir)
	fmt.Fprintf(os.Stderr, "Index: %s\n", app.Config().VectorStore.Index)
	fmt.Fprintf(os.Stderr, "Namespace: %q\n", namespace)
	fmt.Fprintln(os.Stderr)

	err = retry.RetryIf(ctx, func() error {
		report, err := pipeline.IngestDirectory(ctx, dir, opts)
		if err != nil {
			return err
		}
		printReport(os.Stderr, report)
		return nil
	}, maxRetries, retryDelay, retry.Transient)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if !c.Bool("watch") {
		return nil
	}
	return watchDirectory(ctx, dir, ignored, app.Registry().Extensions(), func(paths []string) error {
		return retry.RetryIf(ctx, func() error {
			report, err := pipeline.IngestFiles(ctx, paths, &ingestion.IngestOptions{
				Namespace:       namespace,
				ContinueOnError: true,
			})
			if err != nil {
				return err
			}
			printReport(os.Stderr, report)
			return nil
		}, maxRetries, retryDelay, retry.Transient)
	})
}

// watchDirectory calls ingest for every batch of changed files under dir
// until ctx is cancelled. A failed batch is logged and watching continues.
func watchDirectory(ctx context.Context, dir string, ignored map[string]struct{}, exts []string, ingest func(paths []string) error) error {
	watcher, err := watch.New(watch.WithExtensions(exts...), watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer watcher.Close()

	batches, err := watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", dir)

	for batch := range batches {
		paths := make([]string, 0, len(batch))
		for _, p := range batch {
			if !ingestion.IsIgnored(dir, p, ignored) {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			continue
		}
		slog.Info("files changed", "count", len(paths))
		if err := ingest(paths); err != nil {
			slog.Error("failed to ingest changed files", "count", len(paths), "error", err)
		}
	}
	return nil
}

func ingestURLCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	url := c.String("url")
	if url == "" {
		return fmt.Errorf("url is required")
	}
	maxRetries := c.Int("max-retries")
	if maxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	pipeline, err := app.NewIngestionPipeline(nil)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	opts := &ingestion.IngestOptions{Namespace: app.Config().VectorStore.Namespace}
	err = retry.RetryIf(ctx, func() error {
		report, err := pipeline.IngestURL(ctx, url, opts)
		if err != nil {
			return err
		}
		printReport(os.Stderr, report)
		return nil
	}, maxRetries, c.Duration("retry-delay"), retry.Transient)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func ignoredSet(paths []string) map[string]struct{} {
	if len(paths) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[filepath.Clean(p)] = struct{}{}
	}
	return set
}

func printReport(w io.Writer, report *ingestion.Report) {
	switch report.Outcome {
	case ingestion.OutcomeNoDocuments:
		fmt.Fprintln(w, "No documents to ingest")
	default:
		fmt.Fprintf(w, "Ingested %d document(s) as %d chunk(s) into namespace %q\n",
			report.Documents, report.Chunks, report.Namespace)
	}
	if report.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d already ingested file(s)\n", report.Skipped)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  failed: %s: %v\n", f.Path, f.Err)
	}
}
