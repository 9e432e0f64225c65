package backend

import (
	"github.com/dgraph-io/badger"

	"github.com/cinderchain/cinder/store"
)

// BadgerDatabase is a persistent key-value store backed by BadgerDB.
type BadgerDatabase struct {
	db *badger.DB
}

// NewBadgerDatabase returns a BadgerDB wrapped object.
func NewBadgerDatabase(dirname string) (*BadgerDatabase, error) {
	opts := badger.DefaultOptions(dirname)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerDatabase{db: db}, nil
}

// Put puts the given key / value to the database.
func (db *BadgerDatabase) Put(key []byte, value []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Has checks if the given key is present in the database.
func (db *BadgerDatabase) Has(key []byte) (bool, error) {
	var found bool
	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Get returns the given key if it's present.
func (db *BadgerDatabase) Get(key []byte) ([]byte, error) {
	var value []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete deletes the key from the database.
func (db *BadgerDatabase) Delete(key []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Sync flushes all pending writes to stable storage.
func (db *BadgerDatabase) Sync() error {
	return db.db.Sync()
}

// Close closes the underlying database.
func (db *BadgerDatabase) Close() {
	err := db.db.Close()
	if err != nil {
		logger.Errorf("Failed to close database, err: %v", err)
	}
}
