package conversation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(events ...Event) <-chan Event {
	ch := make(chan Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestWriteStream_WireFormat(t *testing.T) {
	var buf bytes.Buffer
	flushes := 0
	err := WriteStream(&buf, feed(
		Event{Kind: EventToken, Token: "Thirty "},
		Event{Kind: EventToken, Token: "days."},
		Event{Kind: EventSources, Sources: testSources()},
	), func() { flushes++ })
	require.NoError(t, err)
	assert.Equal(t, 3, flushes)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, SourceDocumentsMarker))

	answer, data, found := strings.Cut(out, SourceDocumentsMarker)
	require.True(t, found)
	assert.Equal(t, "Thirty days.", answer)
	assert.True(t, json.Valid([]byte(data)))
	assert.JSONEq(t, `[
		{"pageContent":"Refunds are accepted within 30 days.","metadata":{"source":"policy.pdf","page":"2"}},
		{"pageContent":"Laptops carry a one year warranty.","metadata":{"source":"warranty.txt","page":""}}
	]`, data)
}

func TestWriteStream_SourcesWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStream(&buf, feed(
		Event{Kind: EventToken, Token: "a"},
		Event{Kind: EventSources},
		Event{Kind: EventSources, Sources: testSources()},
	), nil)
	require.NoError(t, err)
	assert.Equal(t, "a"+SourceDocumentsMarker+"[]", buf.String())
}

func TestWriteStream_Error(t *testing.T) {
	var buf bytes.Buffer
	cause := errors.New("stream broke")
	err := WriteStream(&buf, feed(
		Event{Kind: EventToken, Token: "partial"},
		Event{Kind: EventError, Err: cause},
	), nil)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "partial", buf.String(), "emitted tokens stand, no marker")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("client gone")
}

func TestWriteStream_WriteFailure(t *testing.T) {
	err := WriteStream(failingWriter{}, feed(Event{Kind: EventToken, Token: "x"}), nil)
	assert.EqualError(t, err, "client gone")
}

func TestEncodeSources_Nil(t *testing.T) {
	data, err := EncodeSources(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestParseMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStream(&buf, feed(
		Event{Kind: EventToken, Token: "Answer text."},
		Event{Kind: EventSources, Sources: testSources()},
	), nil))

	answer, docs, err := ParseMessage(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "Answer text.", answer)
	assert.Equal(t, testSources(), docs)
}

func TestParseMessage_NoMarker(t *testing.T) {
	answer, docs, err := ParseMessage("just text")
	require.NoError(t, err)
	assert.Equal(t, "just text", answer)
	assert.Nil(t, docs)
}

func TestParseMessage_Malformed(t *testing.T) {
	answer, docs, err := ParseMessage("text" + SourceDocumentsMarker + "{not json")
	assert.ErrorIs(t, err, ErrMalformedSources)
	assert.Equal(t, "text", answer)
	assert.Nil(t, docs)
}

func TestParseMessage_EmptyList(t *testing.T) {
	answer, docs, err := ParseMessage("text" + SourceDocumentsMarker + "[]")
	require.NoError(t, err)
	assert.Equal(t, "text", answer)
	assert.Equal(t, []core.SourceDocument{}, docs)
}
