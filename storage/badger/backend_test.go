package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestOpenBackend_Encrypted(t *testing.T) {
	dir := t.TempDir()
	key := DeriveEncryptionKey("store-secret")
	require.Len(t, key, 32)

	backend, err := OpenBackend(dir, false, WithEncryptionKey(key))
	require.NoError(t, err)
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return tx.Commit()
	}, true))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false, WithEncryptionKey(key))
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		assert.Equal(t, []byte("v"), val)
		return err
	}, false))
}

func TestDeriveEncryptionKey(t *testing.T) {
	assert.Equal(t, DeriveEncryptionKey("a"), DeriveEncryptionKey("a"))
	assert.NotEqual(t, DeriveEncryptionKey("a"), DeriveEncryptionKey("b"))
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestDeletePrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, k := range []string{"a:1", "a:2", "a:3", "b:1"} {
			if err := wb.Set([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	}))

	n, err := backend.DeletePrefix([]byte("a:"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte("a:1"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		_, err = tx.Get([]byte("b:1"))
		assert.NoError(t, err)
		return nil
	}, false))

	n, err = backend.DeletePrefix([]byte("a:"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestKeys_NamespaceIsolation(t *testing.T) {
	short := makeNamespacePrefix("idx", "a")
	long := makeRecordKey("idx", "ab", 1)
	assert.False(t, len(long) >= len(short) && string(long[:len(short)]) == string(short),
		"namespace %q prefix must not match records of namespace %q", "a", "ab")

	other := makeIndexPrefix("idx2")
	assert.NotEqual(t, makeIndexPrefix("idx"), other[:len(makeIndexPrefix("idx"))])
}
