package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/store"
	"github.com/cinderchain/cinder/store/database/backend"
)

type testRecord struct {
	Name   string
	Height uint64
	Hash   common.Hash
}

func TestKVStorePutGetDelete(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	kv := NewKVStore(backend.NewMemDatabase())

	key := common.Bytes("cp/test")
	in := testRecord{Name: "a3", Height: 3, Hash: common.HexToHash("a3")}
	require.Nil(kv.Put(key, in))

	var out testRecord
	require.Nil(kv.Get(key, &out))
	assert.Equal(in, out)

	// Overwrite.
	in.Height = 4
	require.Nil(kv.Put(key, in))
	require.Nil(kv.Get(key, &out))
	assert.Equal(uint64(4), out.Height)

	require.Nil(kv.Delete(key))
	err := kv.Get(key, &out)
	assert.Equal(store.ErrKeyNotFound, err)
}

func TestKVStoreMissingKey(t *testing.T) {
	assert := assert.New(t)

	kv := NewKVStore(backend.NewMemDatabase())
	var out testRecord
	err := kv.Get(common.Bytes("nope"), &out)
	assert.Equal(store.ErrKeyNotFound, err)
}
