package loader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/docchat/core"
)

// PDFLoader loads a PDF file as one document per page.
type PDFLoader struct{}

// NewPDFLoader creates a new PDF document loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load extracts the plain text of every page of the PDF at path.
func (l *PDFLoader) Load(ctx context.Context, path string) (docs []core.Document, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := r.NumPage()
	docs = make([]core.Document, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		docs = append(docs, core.Document{
			Content:  text,
			Metadata: core.Metadata{Source: path, Page: strconv.Itoa(i)},
		})
	}
	return docs, nil
}
