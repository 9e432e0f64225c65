package store

import (
	"errors"

	"github.com/cinderchain/cinder/common"
)

// ErrKeyNotFound is returned when the key does not exist in the store.
var ErrKeyNotFound = errors.New("key not found")

// Store is the interface for key/value storages.
type Store interface {
	Put(key common.Bytes, value interface{}) error
	Delete(key common.Bytes) error
	Get(key common.Bytes, value interface{}) error
}
