package loader

import (
	"context"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/poiesic/docchat/core"
)

// minRunLength is the shortest printable run kept from a binary file.
const minRunLength = 4

// LegacyLoader recovers text from pre-2007 Office binaries (.doc, .ppt).
// Both formats store text either as single-byte runs or as UTF-16LE runs
// inside an OLE container; the loader keeps whichever decoding recovers
// more printable text. Formatting and ordering across streams are lost.
type LegacyLoader struct{}

// NewLegacyLoader creates a new legacy binary document loader.
func NewLegacyLoader() *LegacyLoader {
	return &LegacyLoader{}
}

// Load reads the file at path and returns its printable text as one document.
func (l *LegacyLoader) Load(ctx context.Context, path string) ([]core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	narrow := printableRuns(narrowRunes(data))
	wide := printableRuns(wideRunes(data))
	text := narrow
	if len(wide) > len(narrow) {
		text = wide
	}

	return []core.Document{{
		Content:  text,
		Metadata: core.Metadata{Source: path},
	}}, nil
}

func narrowRunes(data []byte) []rune {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = rune(b)
	}
	return out
}

func wideRunes(data []byte) []rune {
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return utf16.Decode(units)
}

// printableRuns joins every run of at least minRunLength printable runes
// with newlines.
func printableRuns(rs []rune) string {
	var sb strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minRunLength {
			if run := strings.TrimSpace(string(rs[start:end])); run != "" {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(run)
			}
		}
		start = -1
	}
	for i, r := range rs {
		if isTextRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(rs))
	return sb.String()
}

// isTextRune accepts Latin script and common punctuation. Wider ranges
// would let misaligned UTF-16 decoding pass as CJK text.
func isTextRune(r rune) bool {
	switch {
	case r == '\t':
		return true
	case r < 0x20 || r == 0x7f:
		return false
	case r >= 0x80 && r < 0xa0:
		return false
	case r <= 0x024f:
		return true
	case r >= 0x2000 && r <= 0x206f:
		return true
	}
	return r == 0x20ac
}
