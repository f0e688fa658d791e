package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	opts = append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)
	w, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func receive(t *testing.T, batches <-chan []string, timeout time.Duration) []string {
	t.Helper()
	select {
	case batch, ok := <-batches:
		require.True(t, ok, "channel closed")
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for batch")
		return nil
	}
}

func TestWatcher_ReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, WithExtensions(".txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	batch := receive(t, batches, 2*time.Second)
	assert.Equal(t, []string{path}, batch)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, WithDebounce(200*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("three"), 0o644))

	batch := receive(t, batches, 2*time.Second)
	assert.Equal(t, []string{a, b}, batch)
}

func TestWatcher_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, WithExtensions(".txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Report.TXT"), []byte("x"), 0o644))

	select {
	case batch := <-batches:
		t.Errorf("unexpected batch %v", batch)
	case <-time.After(300 * time.Millisecond):
	}

	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, []string{path}, receive(t, batches, 2*time.Second))
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, WithExtensions(".txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	path := filepath.Join(sub, "nested.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	batch := receive(t, batches, 2*time.Second)
	assert.Contains(t, batch, path)
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	w := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	batches, err := w.Watch(ctx, t.TempDir())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-batches:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_WatchTwice(t *testing.T) {
	w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := w.Watch(ctx, t.TempDir())
	require.NoError(t, err)
	_, err = w.Watch(ctx, t.TempDir())
	assert.ErrorIs(t, err, ErrAlreadyWatching)
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := newTestWatcher(t)
	_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
