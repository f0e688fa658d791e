package ingestion

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/docchat/core"
)

var (
	// ErrRegistryRequired is returned when a loader registry is not provided.
	ErrRegistryRequired = errors.New("loader registry required")

	// ErrCoordinatorRequired is returned when a load coordinator is not provided.
	ErrCoordinatorRequired = errors.New("load coordinator required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrWriterRequired is returned when an index writer is not provided.
	ErrWriterRequired = errors.New("index writer required")

	// ErrWebLoaderRequired is returned by IngestURL when no web loader is configured.
	ErrWebLoaderRequired = errors.New("web loader required")
)

// FileError is a load failure for a single file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// PartialLoadError reports the files of a load that failed. The documents
// of every other file are still returned alongside it.
//
// errors.Is matches any of the underlying failures, e.g.
// core.ErrUnsupportedFormat or core.ErrLoad.
type PartialLoadError struct {
	Failures []FileError
}

func newPartialLoadError(failures []FileError) *PartialLoadError {
	slices.SortFunc(failures, func(a, b FileError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return &PartialLoadError{Failures: failures}
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("%d file(s) failed to load: %v", len(e.Failures), errors.Join(e.Unwrap()...))
}

// Unsupported reports whether every failure is an unregistered extension.
// Such failures are signals only and never abort an ingestion run.
func (e *PartialLoadError) Unsupported() bool {
	for _, f := range e.Failures {
		if !errors.Is(f.Err, core.ErrUnsupportedFormat) {
			return false
		}
	}
	return true
}

func (e *PartialLoadError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
