package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for index records.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser is a message written by the person asking questions.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the model.
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Assistant messages may end with a source
// documents block which is stripped before the message is reused as history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Metadata is the provenance carried from a document to its chunks and records.
type Metadata struct {
	Source string `json:"source"`
	Page   string `json:"page"`
}

// Document is the raw text parsed from one file, page, row or URL.
type Document struct {
	Content  string
	Metadata Metadata
}

// Chunk is a contiguous slice of a Document's text.
type Chunk struct {
	Content  string
	Metadata Metadata
	Index    int // Position of the chunk within its document
	Overlap  int // Leading runes shared with the previous chunk of the same document
}

// IndexRecord is a single entry in the vector index.
type IndexRecord struct {
	Id        ID
	Namespace string
	Text      string
	Metadata  Metadata
	Vector    []float32
}

// RecordIDFor derives the record ID of a chunk within a namespace.
// Re-ingesting identical content into the same namespace overwrites
// the existing record instead of duplicating it.
func RecordIDFor(namespace string, chunk Chunk) ID {
	return IDFromContent(namespace + "\x00" + chunk.Metadata.Source + "\x00" +
		chunk.Metadata.Page + "\x00" + strconv.Itoa(chunk.Index) + "\x00" + chunk.Content)
}

// ScoredRecord is a record returned by a similarity search.
type ScoredRecord struct {
	Record *IndexRecord
	Score  float32
}

// IndexDescriptor describes a vector index.
type IndexDescriptor struct {
	Name      string
	Dimension int
}

// SourceDocument is the client-facing view of a retrieved record.
type SourceDocument struct {
	PageContent string   `json:"pageContent"`
	Metadata    Metadata `json:"metadata"`
}

// SourceDocumentsFrom converts retrieved records into source documents,
// preserving their order.
func SourceDocumentsFrom(results []*ScoredRecord) []SourceDocument {
	docs := make([]SourceDocument, 0, len(results))
	for _, r := range results {
		if r == nil || r.Record == nil {
			continue
		}
		docs = append(docs, SourceDocument{
			PageContent: r.Record.Text,
			Metadata:    r.Record.Metadata,
		})
	}
	return docs
}
