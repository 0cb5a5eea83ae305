package keystore

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("keystore: not found")

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Iterator iterates over key/value pairs in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Batch is a write-only set of changes committed atomically.
type Batch interface {
	KeyValueWriter
	Write() error
}

// Database is the storage the keystore runs on.
type Database interface {
	KeyValueReader
	KeyValueWriter
	NewIterator(prefix []byte) Iterator
	NewBatch() Batch
	Close() error
}

// levelDB adapts a goleveldb handle to Database.
type levelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) an on-disk database at path.
func OpenLevelDB(path string) (Database, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 16,
		BlockCacheCapacity:     1 << 20,
	})
	if err != nil {
		return nil, err
	}
	return &levelDB{db: db}, nil
}

// NewMemoryDB returns a database backed by goleveldb's in-memory storage.
// Intended for testing.
func NewMemoryDB() Database {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// Opening fresh memory storage has no failure path.
		panic(err)
	}
	return &levelDB{db: db}
}

func (l *levelDB) Has(key []byte) (bool, error) { return l.db.Has(key, nil) }

func (l *levelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *levelDB) Put(key, value []byte) error { return l.db.Put(key, value, nil) }

func (l *levelDB) Delete(key []byte) error { return l.db.Delete(key, nil) }

func (l *levelDB) Close() error { return l.db.Close() }

// NewIterator returns an iterator over all keys with the given prefix.
func (l *levelDB) NewIterator(prefix []byte) Iterator {
	return l.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// NewBatch creates a new batch writer.
func (l *levelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, b: new(leveldb.Batch)}
}

type levelBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *levelBatch) Write() error { return b.db.Write(b.b, nil) }
