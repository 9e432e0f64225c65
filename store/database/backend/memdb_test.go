package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/store"
)

func TestMemDatabase(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	db := NewMemDatabase()
	defer db.Close()

	key := []byte("key")
	require.Nil(db.Put(key, []byte("value")))

	has, err := db.Has(key)
	require.Nil(err)
	assert.True(has)

	value, err := db.Get(key)
	require.Nil(err)
	assert.Equal([]byte("value"), value)

	// Returned slice is a copy, mutating it must not affect the stored value.
	value[0] = 'x'
	value, err = db.Get(key)
	require.Nil(err)
	assert.Equal([]byte("value"), value)

	assert.Equal(1, db.Len())
	assert.Nil(db.Sync())

	require.Nil(db.Delete(key))
	_, err = db.Get(key)
	assert.Equal(store.ErrKeyNotFound, err)

	has, err = db.Has(key)
	require.Nil(err)
	assert.False(has)
}
