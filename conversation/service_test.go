package conversation

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/poiesic/docchat/ai/mock"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/index"
	"github.com/poiesic/docchat/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 8

type serviceFixture struct {
	service  *Service
	index    *badger.Index
	embedder *mock.MockEmbedder
	chat     *mock.MockChatModel
	condense *mock.MockChatModel
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()

	idx, backend, err := badger.NewMemoryIndexWithDimension(testDimension)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = testDimension
	chat := mock.NewMockChatModel("Refunds take 30 days.")
	condense := mock.NewMockChatModel("How long do refunds take for laptops?")

	writer, err := index.NewWriter(idx)
	require.NoError(t, err)
	chunks := []core.Chunk{
		{Content: "Refunds are accepted within 30 days.", Metadata: core.Metadata{Source: "policy.txt"}},
		{Content: "Shipping is free over $50.", Metadata: core.Metadata{Source: "shipping.txt"}},
	}
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vectors[i] = mock.DeterministicVector(c.Content, testDimension)
	}
	require.NoError(t, writer.Upsert(context.Background(), "docs", chunks, vectors))

	condenser, err := NewCondenser(condense)
	require.NoError(t, err)
	retriever, err := NewRetriever(embedder, idx, WithNamespace("docs"), WithTopK(1))
	require.NoError(t, err)
	streamer, err := NewStreamer(chat)
	require.NoError(t, err)
	service, err := NewService(condenser, retriever, streamer)
	require.NoError(t, err)

	return &serviceFixture{
		service:  service,
		index:    idx,
		embedder: embedder,
		chat:     chat,
		condense: condense,
	}
}

// recordingMonitor captures the intermediate results of a request.
type recordingMonitor struct {
	started    bool
	standalone string
	sources    []core.SourceDocument
}

func (m *recordingMonitor) Start(_ []core.Message)                       { m.started = true }
func (m *recordingMonitor) AfterCondense(standalone string)              { m.standalone = standalone }
func (m *recordingMonitor) AfterRetrieval(sources []core.SourceDocument) { m.sources = sources }

func TestNewService_RequiredArguments(t *testing.T) {
	c, _ := NewCondenser(mock.NewMockChatModel(""))
	r, _ := NewRetriever(mock.NewMockEmbedder(), &fakeStore{})
	s, _ := NewStreamer(mock.NewMockChatModel(""))

	_, err := NewService(nil, r, s)
	assert.ErrorIs(t, err, ErrCondenserRequired)
	_, err = NewService(c, nil, s)
	assert.ErrorIs(t, err, ErrRetrieverRequired)
	_, err = NewService(c, r, nil)
	assert.ErrorIs(t, err, ErrStreamerRequired)
}

func TestService_AskFirstQuestion(t *testing.T) {
	f := setupService(t)
	question := "Refunds are accepted within 30 days."

	monitor := &recordingMonitor{}
	events, err := f.service.AskWithMonitor(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: question},
	}, monitor)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStream(&buf, events, nil))

	answer, docs, err := ParseMessage(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "Refunds take 30 days.", answer)
	require.Len(t, docs, 1)
	assert.Equal(t, "Refunds are accepted within 30 days.", docs[0].PageContent, "exact text is its own nearest neighbor")
	assert.Equal(t, "policy.txt", docs[0].Metadata.Source)

	assert.Equal(t, 0, f.condense.CallCount(), "no history means no condensation call")
	assert.True(t, monitor.started)
	assert.Equal(t, question, monitor.standalone)
	assert.Equal(t, docs, monitor.sources)
}

func TestService_AskFollowUp(t *testing.T) {
	f := setupService(t)

	events, err := f.service.Ask(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "Tell me about refunds."},
		{Role: core.RoleAssistant, Content: "Refunds are accepted.##SOURCE_DOCUMENTS##[]"},
		{Role: core.RoleUser, Content: "For laptops?"},
	})
	require.NoError(t, err)
	collect(events)

	assert.Equal(t, 1, f.condense.CallCount())
	require.Equal(t, 1, f.chat.CallCount())
	assert.Contains(t, f.chat.Prompts()[0], "Question: How long do refunds take for laptops?")
}

func TestService_ValidationErrors(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.service.Ask(ctx, nil)
	assert.ErrorIs(t, err, core.ErrEmptyConversation)

	_, err = f.service.Ask(ctx, []core.Message{{Role: core.RoleAssistant, Content: "hi"}})
	assert.ErrorIs(t, err, core.ErrInvalidConversation)

	_, err = f.service.Ask(ctx, []core.Message{{Role: "system", Content: "hi"}})
	assert.ErrorIs(t, err, core.ErrInvalidRole)

	assert.Equal(t, 0, f.chat.CallCount())
}

func TestService_CondensationErrorReturnedDirectly(t *testing.T) {
	f := setupService(t)
	f.condense.Response = ""

	events, err := f.service.Ask(context.Background(), turns(3))
	assert.Nil(t, events)
	assert.ErrorIs(t, err, core.ErrCondensation)
	assert.Equal(t, 0, f.chat.CallCount())
}

func TestService_RetrievalErrorReturnedDirectly(t *testing.T) {
	f := setupService(t)
	f.embedder.Dimension = testDimension + 1

	events, err := f.service.Ask(context.Background(), turns(1))
	assert.Nil(t, events)
	assert.ErrorIs(t, err, core.ErrRetrieval)
}

func TestService_EmptyNamespace(t *testing.T) {
	f := setupService(t)
	eraser, err := index.NewEraser(f.index)
	require.NoError(t, err)
	_, err = eraser.Erase(context.Background(), "docs")
	require.NoError(t, err)

	events, err := f.service.Ask(context.Background(), turns(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStream(&buf, events, nil))
	assert.True(t, strings.HasSuffix(buf.String(), SourceDocumentsMarker+"[]"))
}
