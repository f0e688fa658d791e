package loader

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/docchat/core"
)

var errMissingPart = errors.New("missing document part")

// DocxLoader loads the body text of a Word document.
type DocxLoader struct{}

// NewDocxLoader creates a new .docx document loader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

// Load extracts the paragraphs of word/document.xml as a single document.
func (l *DocxLoader) Load(ctx context.Context, filePath string) ([]core.Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		text, err := extractPartText(f)
		if err != nil {
			return nil, err
		}
		return []core.Document{{
			Content:  text,
			Metadata: core.Metadata{Source: filePath},
		}}, nil
	}
	return nil, fmt.Errorf("%w: word/document.xml", errMissingPart)
}

// PptxLoader loads a PowerPoint deck as one document per slide.
type PptxLoader struct{}

// NewPptxLoader creates a new .pptx document loader.
func NewPptxLoader() *PptxLoader {
	return &PptxLoader{}
}

type slidePart struct {
	number int
	file   *zip.File
}

// Load extracts the text of every ppt/slides/slideN.xml part in slide order.
func (l *PptxLoader) Load(ctx context.Context, filePath string) ([]core.Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var slides []slidePart
	for _, f := range zr.File {
		dir, name := path.Split(f.Name)
		if dir != "ppt/slides/" || !strings.HasPrefix(name, "slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "slide"), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slidePart{number: n, file: f})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: ppt/slides", errMissingPart)
	}
	slices.SortFunc(slides, func(a, b slidePart) int { return a.number - b.number })

	docs := make([]core.Document, 0, len(slides))
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := extractPartText(s.file)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.number, err)
		}
		docs = append(docs, core.Document{
			Content:  text,
			Metadata: core.Metadata{Source: filePath, Page: strconv.Itoa(s.number)},
		})
	}
	return docs, nil
}

func extractPartText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return extractRuns(rc)
}

// extractRuns collects the character data of <t> elements from a
// WordprocessingML or DrawingML part. Paragraph ends and explicit breaks
// become newlines, tabs become tab characters.
func extractRuns(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
