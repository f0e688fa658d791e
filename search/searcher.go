package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
)

const (
	// VerbatimBoost is added to the score of a chunk containing every query keyword.
	VerbatimBoost = 0.3

	// overfetch widens the semantic candidate set so verbatim hits ranked
	// just below maxHits can be promoted.
	overfetch = 2
)

// Searcher finds the stored chunks most relevant to a query.
type Searcher struct {
	store     storage.VectorStore
	embedder  ai.Embedder
	namespace string
	minScore  float32
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithNamespace sets the namespace to search.
// Default is the empty namespace.
func WithNamespace(namespace string) Option {
	return func(s *Searcher) error {
		s.namespace = namespace
		return nil
	}
}

// WithMinScore drops semantic matches whose similarity is below score.
// Default is 0, which keeps every match.
func WithMinScore(score float32) Option {
	return func(s *Searcher) error {
		s.minScore = score
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// FindSimilar searches for chunks similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.ScoredRecord, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for chunks similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.ScoredRecord, error) {
	if maxHits < 1 {
		return nil, ErrInvalidMaxHits
	}
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Perform semantic search
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: embed query: %w", core.ErrRetrieval, err)
	}

	matches, err := s.store.Query(ctx, s.namespace, embedding, maxHits*overfetch)
	if err != nil {
		s.logger.Error("error querying for similar records", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrRetrieval, err)
	}
	monitor.AfterSemanticSearch(matches)

	// 2. Drop weak matches and boost verbatim ones
	results := make([]*core.ScoredRecord, 0, len(matches))
	for _, match := range matches {
		if match == nil || match.Record == nil {
			continue
		}
		if match.Score < s.minScore {
			monitor.BelowMinScore(match)
			continue
		}

		score := match.Score
		if containsAllKeywords(match.Record.Text, query) {
			score += VerbatimBoost
			monitor.VerbatimHit(match.Record)
		}
		results = append(results, &core.ScoredRecord{
			Record: match.Record,
			Score:  score,
		})
	}

	// 3. Sort by score descending; ties keep the index's order
	slices.SortStableFunc(results, func(a, b *core.ScoredRecord) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	s.logger.Debug("search finished", "query", query, "candidates", len(matches), "results", len(results))
	return results, nil
}
