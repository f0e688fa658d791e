package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/docchat/core"
)

// ErrMalformedSources is returned by ParseMessage when the text after the
// marker is not a JSON source list.
var ErrMalformedSources = errors.New("malformed source documents")

// EncodeSources renders docs as a camelCase JSON array. A nil list
// encodes as [].
func EncodeSources(docs []core.SourceDocument) ([]byte, error) {
	if docs == nil {
		docs = []core.SourceDocument{}
	}
	return json.Marshal(docs)
}

// WriteStream copies an answer stream to w in the wire format: each token
// as raw text, then SourceDocumentsMarker and the JSON source list, at most
// once. flush, when non-nil, is called after every write.
//
// An EventError is returned as the error after the tokens before it have
// been written. If WriteStream returns early the caller must cancel the
// stream's context so the producer stops.
func WriteStream(w io.Writer, events <-chan Event, flush func()) error {
	sourcesWritten := false
	for event := range events {
		switch event.Kind {
		case EventToken:
			if _, err := io.WriteString(w, event.Token); err != nil {
				return err
			}
		case EventSources:
			if sourcesWritten {
				continue
			}
			data, err := EncodeSources(event.Sources)
			if err != nil {
				return fmt.Errorf("encode sources: %w", err)
			}
			if _, err := io.WriteString(w, SourceDocumentsMarker); err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			sourcesWritten = true
		case EventError:
			return event.Err
		}
		if flush != nil {
			flush()
		}
	}
	return nil
}

// ParseMessage splits a merged message into the answer text and its
// source documents. A message without the marker is all answer. If the
// source list cannot be decoded the answer is still returned, with an
// error wrapping ErrMalformedSources.
func ParseMessage(content string) (string, []core.SourceDocument, error) {
	answer, data, found := strings.Cut(content, SourceDocumentsMarker)
	if !found {
		return answer, nil, nil
	}
	var docs []core.SourceDocument
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		return answer, nil, fmt.Errorf("%w: %w", ErrMalformedSources, err)
	}
	return answer, docs, nil
}
