package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/go-crypt/x/blake2b"
)

const (
	// encryptionIndexCacheSize is required by badger once encryption is on.
	encryptionIndexCacheSize = 100 << 20

	// deleteBatchSize bounds the number of keys collected per delete pass.
	deleteBatchSize = 10_000
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// BackendOption configures OpenBackend.
type BackendOption func(*badger.Options)

// WithEncryptionKey encrypts data at rest with key.
// The key must be 16, 24 or 32 bytes long; see DeriveEncryptionKey.
func WithEncryptionKey(key []byte) BackendOption {
	return func(o *badger.Options) {
		*o = o.WithEncryptionKey(key).WithIndexCacheSize(encryptionIndexCacheSize)
	}
}

// DeriveEncryptionKey turns an arbitrary secret into a 32-byte AES key.
func DeriveEncryptionKey(secret string) []byte {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(secret))
	return h.Sum(nil)
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool, backendOpts ...BackendOption) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "badger")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None
	for _, o := range backendOpts {
		o(&opts)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithBatch runs fn against a write batch and flushes it.
// Batches are not atomic but are not bounded by transaction size limits.
func (b *Backend) WithBatch(fn func(wb *badger.WriteBatch) error) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	if err := fn(wb); err != nil {
		return err
	}
	return wb.Flush()
}

// DeletePrefix removes every key starting with prefix and returns the
// number of keys deleted.
func (b *Backend) DeletePrefix(prefix []byte) (int, error) {
	total := 0
	for {
		var keys [][]byte
		err := b.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Rewind(); iter.Valid() && len(keys) < deleteBatchSize; iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			return nil
		}, false)
		if err != nil {
			return total, err
		}
		if len(keys) == 0 {
			return total, nil
		}

		err = b.WithBatch(func(wb *badger.WriteBatch) error {
			for _, k := range keys {
				if err := wb.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(keys)
	}
}
