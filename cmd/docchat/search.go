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
	"io"
	"os"
	"strings"

	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/search"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	maxHits := c.Int("max-hits")
	if maxHits <= 0 {
		return fmt.Errorf("max-hits must be greater than 0")
	}

	app, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.Close()

	searcher, err := search.NewSearcher(app.Index(), app.Provider().Embedder(),
		search.WithNamespace(app.Config().VectorStore.Namespace),
		search.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, c.String("query"), maxHits)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printHits(os.Stdout, results)
	return nil
}

func printHits(w io.Writer, results []*core.ScoredRecord) {
	fmt.Fprintf(w, "Found %d hits\n", len(results))
	for i, hit := range results {
		text := strings.Join(strings.Fields(hit.Record.Text), " ")
		if len(text) > 120 {
			text = text[:117] + "..."
		}
		fmt.Fprintf(w, "%d: [%0.3f] %s", i+1, hit.Score, hit.Record.Metadata.Source)
		if hit.Record.Metadata.Page != "" {
			fmt.Fprintf(w, " p.%s", hit.Record.Metadata.Page)
		}
		fmt.Fprintf(w, "\n   '%s'\n", text)
	}
}
