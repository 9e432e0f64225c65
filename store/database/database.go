package database

// Database wraps all database operations. All methods are safe for concurrent use.
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error

	// Sync acts as a durability barrier: when it returns without error, all
	// previously written entries have reached stable storage.
	Sync() error

	Close()
}
