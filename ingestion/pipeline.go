package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/chunking"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/index"
	"github.com/poiesic/docchat/loader"
	"github.com/poiesic/docchat/storage"
)

// Outcome summarizes what an ingestion run did.
type Outcome int

const (
	// OutcomeNoDocuments means nothing new was found to ingest.
	OutcomeNoDocuments Outcome = iota
	// OutcomeIngested means at least one chunk was written to the index.
	OutcomeIngested
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIngested:
		return "ingested"
	case OutcomeNoDocuments:
		return "no documents"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Report describes a finished ingestion run.
type Report struct {
	Outcome   Outcome
	Namespace string
	Skipped   int // Files skipped because the manifest already lists them
	Documents int
	Chunks    int
	Failures  []FileError
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Namespace       string              // Target namespace; empty is the default namespace
	Ignored         map[string]struct{} // Paths to leave out of a directory walk
	Incremental     bool                // Skip files the manifest lists for Namespace
	ContinueOnError bool                // Ingest what loaded even if some files failed to load
	SkipManifest    bool                // Do not record the files in the manifest, e.g. temporary uploads
}

// Pipeline runs load, chunk, embed and write for a corpus.
type Pipeline struct {
	coordinator *Coordinator
	web         loader.DocumentLoader
	chunker     *chunking.Chunker
	embedder    ai.Embedder
	writer      *index.Writer
	manifest    storage.ManifestRepository
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWebLoader sets the loader used by IngestURL.
func WithWebLoader(l loader.DocumentLoader) Option {
	return func(p *Pipeline) error {
		p.web = l
		return nil
	}
}

// WithManifest records ingested files so incremental runs can skip them.
func WithManifest(m storage.ManifestRepository) Option {
	return func(p *Pipeline) error {
		p.manifest = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	coordinator *Coordinator,
	chunker *chunking.Chunker,
	embedder ai.Embedder,
	writer *index.Writer,
	opts ...Option,
) (*Pipeline, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if writer == nil {
		return nil, ErrWriterRequired
	}

	p := &Pipeline{
		coordinator: coordinator,
		chunker:     chunker,
		embedder:    embedder,
		writer:      writer,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion-pipeline")
	return p, nil
}

// Release stops the coordinator's worker pool.
func (p *Pipeline) Release() {
	p.coordinator.Release()
}

// IngestDirectory ingests every supported file under root.
//
// Files with an unregistered extension are listed in the report and skipped.
// Any other load failure aborts the run with a *PartialLoadError unless
// opts.ContinueOnError is set, in which case it is listed in the report too.
func (p *Pipeline) IngestDirectory(ctx context.Context, root string, opts *IngestOptions) (*Report, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	report := &Report{Namespace: opts.Namespace}

	ignored := opts.Ignored
	if opts.Incremental && p.manifest != nil {
		done, err := p.manifest.IngestedPaths(ctx, opts.Namespace)
		if err != nil {
			return report, fmt.Errorf("read manifest: %w", err)
		}
		ignored = make(map[string]struct{}, len(opts.Ignored)+len(done))
		maps.Copy(ignored, opts.Ignored)
		for path := range done {
			ignored[path] = struct{}{}
		}
		report.Skipped = len(done)
	}

	docs, err := p.coordinator.Load(ctx, root, ignored)
	return p.finish(ctx, report, docs, err, opts)
}

// IngestFiles ingests the given files.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string, opts *IngestOptions) (*Report, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	report := &Report{Namespace: opts.Namespace}

	if opts.Incremental && p.manifest != nil {
		done, err := p.manifest.IngestedPaths(ctx, opts.Namespace)
		if err != nil {
			return report, fmt.Errorf("read manifest: %w", err)
		}
		paths = slices.DeleteFunc(slices.Clone(paths), func(path string) bool {
			_, ok := done[path]
			if ok {
				report.Skipped++
			}
			return ok
		})
	}

	docs, err := p.coordinator.LoadFiles(ctx, paths)
	return p.finish(ctx, report, docs, err, opts)
}

// IngestURL fetches a single web page and ingests its text.
func (p *Pipeline) IngestURL(ctx context.Context, url string, opts *IngestOptions) (*Report, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	report := &Report{Namespace: opts.Namespace}
	if p.web == nil {
		return report, ErrWebLoaderRequired
	}

	docs, err := p.web.Load(ctx, url)
	if err != nil {
		return report, err
	}
	return p.write(ctx, report, docs, opts.Namespace, false)
}

func (p *Pipeline) finish(ctx context.Context, report *Report, docs []core.Document, loadErr error, opts *IngestOptions) (*Report, error) {
	if loadErr != nil {
		var partial *PartialLoadError
		if !errors.As(loadErr, &partial) {
			return report, loadErr
		}
		report.Failures = partial.Failures
		if !opts.ContinueOnError && !partial.Unsupported() {
			return report, loadErr
		}
	}
	return p.write(ctx, report, docs, opts.Namespace, !opts.SkipManifest)
}

// write chunks, embeds and upserts docs. Ingested sources are recorded in
// the manifest when track is set.
func (p *Pipeline) write(ctx context.Context, report *Report, docs []core.Document, namespace string, track bool) (*Report, error) {
	report.Documents = len(docs)
	chunks := p.chunker.SplitDocuments(docs)
	if len(chunks) == 0 {
		p.logger.Info("no new documents to load", "namespace", namespace)
		report.Outcome = OutcomeNoDocuments
		return report, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return report, fmt.Errorf("%w: got %d embeddings for %d chunks", core.ErrEmbedding, len(vectors), len(chunks))
	}

	if err := p.writer.Replace(ctx, namespace, chunks, vectors); err != nil {
		return report, err
	}
	report.Chunks = len(chunks)
	report.Outcome = OutcomeIngested
	p.logger.Info("ingested documents", "namespace", namespace,
		"documents", report.Documents, "chunks", report.Chunks)

	if track && p.manifest != nil {
		if err := p.manifest.MarkIngested(ctx, namespace, sources(docs)...); err != nil {
			return report, fmt.Errorf("update manifest: %w", err)
		}
	}
	return report, nil
}

// sources returns the distinct document sources in first-seen order.
func sources(docs []core.Document) []string {
	seen := make(map[string]struct{}, len(docs))
	var out []string
	for _, d := range docs {
		if _, ok := seen[d.Metadata.Source]; ok {
			continue
		}
		seen[d.Metadata.Source] = struct{}{}
		out = append(out, d.Metadata.Source)
	}
	return out
}
