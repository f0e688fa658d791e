package loader

import (
	"context"
	"os"
	"strconv"

	"github.com/poiesic/docchat/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// TextLoader loads plain text and markdown files as a single document.
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads the file at path.
func (l *TextLoader) Load(ctx context.Context, path string) ([]core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, err
	}
	return fromSchema(docs, path, false), nil
}

// CSVLoader loads a CSV file as one document per data row.
// Each document renders the row as "column: value" lines.
type CSVLoader struct{}

// NewCSVLoader creates a new CSV document loader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Load reads the file at path.
func (l *CSVLoader) Load(ctx context.Context, path string) ([]core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewCSV(f).Load(ctx)
	if err != nil {
		return nil, err
	}
	return fromSchema(docs, path, true), nil
}

// HTMLLoader loads the visible text of an HTML file.
type HTMLLoader struct{}

// NewHTMLLoader creates a new HTML document loader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Load reads the file at path.
func (l *HTMLLoader) Load(ctx context.Context, path string) ([]core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewHTML(f).Load(ctx)
	if err != nil {
		return nil, err
	}
	return fromSchema(docs, path, false), nil
}

// fromSchema converts langchaingo documents, stamping source and, when
// paged is set, the 1-based position of each document as its page.
func fromSchema(docs []schema.Document, source string, paged bool) []core.Document {
	out := make([]core.Document, 0, len(docs))
	for i, d := range docs {
		md := core.Metadata{Source: source}
		if paged {
			md.Page = strconv.Itoa(i + 1)
		}
		out = append(out, core.Document{Content: d.PageContent, Metadata: md})
	}
	return out
}
