// Package chunking splits documents into overlapping, size-bounded chunks.
//
// Text is cut at the coarsest boundary that keeps pieces within the chunk
// size: paragraphs, then lines, then sentences, then words, then single
// characters. Separators stay attached to the text before them and nothing
// is trimmed, so for every document
//
//	chunks[0].Content + chunks[1].Content[chunks[1].Overlap:] + ... == document.Content
//
// where slicing is by rune.
package chunking

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docchat/core"
)

const (
	// DefaultChunkSize is the maximum chunk length in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of runes shared by adjacent chunks.
	DefaultChunkOverlap = 0
)

// ErrInvalidConfig is returned for a chunk size or overlap that cannot
// produce chunks.
var ErrInvalidConfig = errors.New("invalid chunker configuration")

// DefaultSeparators are the split boundaries from coarsest to finest.
// Separators on the same level are equivalent.
var DefaultSeparators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// Chunker splits documents into chunks.
// A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	size       int
	overlap    int
	separators [][]string
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the maximum chunk length in runes.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		c.size = size
		return nil
	}
}

// WithChunkOverlap sets the number of trailing runes of the preceding text
// each chunk after the first starts with.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) Option {
	return func(c *Chunker) error {
		c.overlap = overlap
		return nil
	}
}

// WithSeparators replaces the split boundaries, coarsest first.
// Character splitting always remains as the final level.
func WithSeparators(levels ...[]string) Option {
	return func(c *Chunker) error {
		for _, level := range levels {
			for _, sep := range level {
				if sep == "" {
					return fmt.Errorf("%w: empty separator", ErrInvalidConfig)
				}
			}
		}
		c.separators = levels
		return nil
	}
}

// New creates a Chunker.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:       DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.size < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.size)
	}
	if c.overlap < 0 || c.overlap >= c.size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidConfig, c.size, c.overlap)
	}
	return c, nil
}

// Size returns the maximum chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts doc into chunks carrying doc's metadata.
// An empty document yields no chunks.
func (c *Chunker) Split(doc core.Document) []core.Chunk {
	if doc.Content == "" {
		return nil
	}

	// Room left for the body once the overlap prefix is in place.
	limit := c.size - c.overlap
	bodies := merge(c.segment(doc.Content, c.separators, limit, nil), limit)

	chunks := make([]core.Chunk, 0, len(bodies))
	var tail []rune
	for i, body := range bodies {
		prefix := string(tail)
		chunks = append(chunks, core.Chunk{
			Content:  prefix + body,
			Metadata: doc.Metadata,
			Index:    i,
			Overlap:  len(tail),
		})
		if c.overlap > 0 {
			tail = lastRunes(append(tail, []rune(body)...), c.overlap)
		}
	}
	return chunks
}

// SplitDocuments splits every document in order.
func (c *Chunker) SplitDocuments(docs []core.Document) []core.Chunk {
	var chunks []core.Chunk
	for _, d := range docs {
		chunks = append(chunks, c.Split(d)...)
	}
	return chunks
}

// Reassemble joins chunks of one document back into its text.
func Reassemble(chunks []core.Chunk) string {
	var sb strings.Builder
	for _, ch := range chunks {
		rs := []rune(ch.Content)
		sb.WriteString(string(rs[min(ch.Overlap, len(rs)):]))
	}
	return sb.String()
}

// segment partitions text into pieces of at most limit runes, splitting at
// the coarsest separator level that helps.
func (c *Chunker) segment(text string, levels [][]string, limit int, out []string) []string {
	if utf8.RuneCountInString(text) <= limit {
		return append(out, text)
	}
	if len(levels) == 0 {
		rs := []rune(text)
		for i := 0; i < len(rs); i += limit {
			out = append(out, string(rs[i:min(i+limit, len(rs))]))
		}
		return out
	}

	pieces := splitAfterAny(text, levels[0])
	if len(pieces) == 1 {
		return c.segment(text, levels[1:], limit, out)
	}
	for _, p := range pieces {
		out = c.segment(p, levels[1:], limit, out)
	}
	return out
}

// merge greedily packs consecutive segments into bodies of at most limit runes.
func merge(segments []string, limit int) []string {
	var bodies []string
	var cur strings.Builder
	curLen := 0
	for _, s := range segments {
		n := utf8.RuneCountInString(s)
		if curLen > 0 && curLen+n > limit {
			bodies = append(bodies, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(s)
		curLen += n
	}
	if curLen > 0 {
		bodies = append(bodies, cur.String())
	}
	return bodies
}

// splitAfterAny cuts text after every occurrence of any separator in seps,
// keeping the separator on the left piece. No piece is empty.
func splitAfterAny(text string, seps []string) []string {
	var pieces []string
	for len(text) > 0 {
		cut := -1
		for _, sep := range seps {
			if i := strings.Index(text, sep); i >= 0 && (cut < 0 || i+len(sep) < cut) {
				cut = i + len(sep)
			}
		}
		if cut < 0 {
			pieces = append(pieces, text)
			break
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	return pieces
}

func lastRunes(rs []rune, n int) []rune {
	if len(rs) <= n {
		return rs
	}
	return append([]rune(nil), rs[len(rs)-n:]...)
}
