package index

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/storage"
	"github.com/poiesic/docchat/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T, opts ...badger.IndexOption) *badger.Index {
	t.Helper()
	idx, backend, err := badger.NewMemoryIndexWithDimension(3, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return idx
}

func testChunks() []core.Chunk {
	return []core.Chunk{
		{Content: "alpha", Metadata: core.Metadata{Source: "a.txt", Page: "1"}, Index: 0},
		{Content: "beta", Metadata: core.Metadata{Source: "a.txt", Page: "1"}, Index: 1},
	}
}

func testVectors() [][]float32 {
	return [][]float32{{1, 0, 0}, {0, 1, 0}}
}

// failingStore fails every Upsert and DeleteAll.
type failingStore struct {
	storage.Index
	err error
}

func (f *failingStore) Upsert(ctx context.Context, records ...*core.IndexRecord) error {
	return f.err
}

func TestNewWriter_RequiresStore(t *testing.T) {
	_, err := NewWriter(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestWriter_Upsert(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, w.Upsert(ctx, "docs", testChunks(), testVectors()))

	results, err := idx.Query(ctx, "docs", []float32{0, 1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "beta", results[0].Record.Text)
	assert.Equal(t, "docs", results[0].Record.Namespace)
	assert.Equal(t, core.Metadata{Source: "a.txt", Page: "1"}, results[0].Record.Metadata)
}

func TestWriter_UpsertIsIdempotent(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, w.Upsert(ctx, "docs", testChunks(), testVectors()))
	require.NoError(t, w.Upsert(ctx, "docs", testChunks(), testVectors()))

	results, err := idx.Query(ctx, "docs", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestWriter_UpsertEmpty(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)
	assert.NoError(t, w.Upsert(context.Background(), "docs", nil, nil))
}

func TestWriter_UpsertCountMismatch(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)

	err = w.Upsert(context.Background(), "docs", testChunks(), testVectors()[:1])
	assert.ErrorIs(t, err, core.ErrIndexWrite)
}

func TestWriter_UpsertDimensionMismatch(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)

	err = w.Upsert(context.Background(), "docs", testChunks(), [][]float32{{1, 0}, {0, 1}})
	assert.ErrorIs(t, err, core.ErrIndexWrite)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestWriter_UpsertStoreFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	w, err := NewWriter(&failingStore{err: cause})
	require.NoError(t, err)

	err = w.Upsert(context.Background(), "docs", testChunks(), testVectors())
	assert.ErrorIs(t, err, core.ErrIndexWrite)
	assert.ErrorIs(t, err, cause)
}

func TestWriter_ReplaceRemovesPreviousVersion(t *testing.T) {
	idx := setupIndex(t)
	w, err := NewWriter(idx)
	require.NoError(t, err)
	ctx := context.Background()

	other := []core.Chunk{{Content: "gamma", Metadata: core.Metadata{Source: "b.txt"}}}
	require.NoError(t, w.Replace(ctx, "docs", testChunks(), testVectors()))
	require.NoError(t, w.Replace(ctx, "docs", other, [][]float32{{0, 0, 1}}))

	revised := []core.Chunk{
		{Content: "alpha", Metadata: core.Metadata{Source: "a.txt", Page: "1"}, Index: 0},
		{Content: "delta", Metadata: core.Metadata{Source: "a.txt", Page: "1"}, Index: 1},
	}
	require.NoError(t, w.Replace(ctx, "docs", revised, testVectors()))

	results, err := idx.Query(ctx, "docs", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	var texts []string
	for _, r := range results {
		texts = append(texts, r.Record.Text)
	}
	assert.ElementsMatch(t, []string{"alpha", "delta", "gamma"}, texts)
}

func TestWriter_ReplaceStoreFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	w, err := NewWriter(&failingStore{err: cause})
	require.NoError(t, err)

	err = w.Replace(context.Background(), "docs", testChunks(), testVectors())
	assert.ErrorIs(t, err, core.ErrIndexWrite)
	assert.ErrorIs(t, err, cause)
}

func TestNewEraser_Validation(t *testing.T) {
	_, err := NewEraser(nil)
	assert.ErrorIs(t, err, ErrIndexRequired)

	idx := setupIndex(t)
	_, err = NewEraser(idx, WithRecreateDimension(0))
	assert.Error(t, err)
}

func TestEraser_Erase(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()
	w, err := NewWriter(idx)
	require.NoError(t, err)
	require.NoError(t, w.Upsert(ctx, "docs", testChunks(), testVectors()))
	require.NoError(t, w.Upsert(ctx, "other", testChunks(), testVectors()))

	e, err := NewEraser(idx)
	require.NoError(t, err)

	msg, err := e.Erase(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, DeletedMessage, msg)

	results, err := idx.Query(ctx, "docs", []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Query(ctx, "other", []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Len(t, results, 2, "other namespaces survive a scoped erase")
}

func TestEraser_UnsupportedWithoutFallback(t *testing.T) {
	idx := setupIndex(t, badger.WithDeleteAllDisabled())
	e, err := NewEraser(idx)
	require.NoError(t, err)

	msg, err := e.Erase(context.Background(), "docs")
	assert.Empty(t, msg)
	assert.ErrorIs(t, err, ErrEraseFailed)
	assert.ErrorIs(t, err, storage.ErrDeleteAllUnsupported)
}

func TestEraser_RecreateFallback(t *testing.T) {
	idx := setupIndex(t, badger.WithDeleteAllDisabled())
	ctx := context.Background()
	w, err := NewWriter(idx)
	require.NoError(t, err)
	require.NoError(t, w.Upsert(ctx, "docs", testChunks(), testVectors()))

	e, err := NewEraser(idx, WithIndexRecreateFallback())
	require.NoError(t, err)

	msg, err := e.Erase(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, DeletedMessage, msg)

	desc, err := idx.DescribeIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ai.DefaultDimension, desc.Dimension)

	vector := make([]float32, ai.DefaultDimension)
	vector[0] = 1
	results, err := idx.Query(ctx, "docs", vector, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEraser_RecreateDimension(t *testing.T) {
	idx := setupIndex(t, badger.WithDeleteAllDisabled())
	ctx := context.Background()

	e, err := NewEraser(idx, WithIndexRecreateFallback(), WithRecreateDimension(3))
	require.NoError(t, err)

	_, err = e.Erase(ctx, "docs")
	require.NoError(t, err)

	desc, err := idx.DescribeIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, desc.Dimension)
}
