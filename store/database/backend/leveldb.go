package backend

import (
	log "github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/cinderchain/cinder/store"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "store"})

// LDBDatabase is a persistent key-value store backed by LevelDB.
type LDBDatabase struct {
	fn string      // filename for reporting
	db *leveldb.DB // LevelDB instance
}

// NewLDBDatabase returns a LevelDB wrapped object.
func NewLDBDatabase(file string, cache int, handles int) (*LDBDatabase, error) {
	// Ensure we have some minimal caching and file guarantees
	if cache < 16 {
		cache = 16
	}
	if handles < 16 {
		handles = 16
	}
	logger.Infof("Allocated cache and file handles, cache: %v, handles: %v", cache, handles)

	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}

	return &LDBDatabase{
		fn: file,
		db: db,
	}, nil
}

// Path returns the path to the database directory.
func (db *LDBDatabase) Path() string {
	return db.fn
}

// Put puts the given key / value to the database.
func (db *LDBDatabase) Put(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

// Has checks if the given key is present in the database.
func (db *LDBDatabase) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (db *LDBDatabase) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, store.ErrKeyNotFound
		}
		return nil, err
	}
	return dat, nil
}

// Delete deletes the key from the database.
func (db *LDBDatabase) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

// Sync flushes the write-ahead log to stable storage. An empty batch written
// with the sync option forces all earlier journal entries to disk.
func (db *LDBDatabase) Sync() error {
	batch := new(leveldb.Batch)
	return db.db.Write(batch, &opt.WriteOptions{Sync: true})
}

// Close closes the underlying database.
func (db *LDBDatabase) Close() {
	err := db.db.Close()
	if err == nil {
		logger.Info("Database closed")
	} else {
		logger.Errorf("Failed to close database, err: %v", err)
	}
}
