package core

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/common"
)

func TestBlockHash(t *testing.T) {
	assert := assert.New(t)

	var nilHeader *BlockHeader
	assert.Equal(common.Hash{}, nilHeader.Hash())

	b1 := NewBlock()
	b1.ChainID = "testchain"
	b1.Height = 1
	b1.StateHash = common.HexToHash("s1")
	b1.Timestamp = big.NewInt(0)

	b2 := NewBlock()
	b2.ChainID = "testchain"
	b2.Height = 1
	b2.StateHash = common.HexToHash("s1")
	b2.Timestamp = big.NewInt(0)

	// The hash is a pure function of the header fields.
	assert.Equal(b1.Hash(), b2.Hash())

	b2.Height = 2
	assert.NotEqual(b1.Hash(), b2.UpdateHash())
}

func TestBlockHashNotSerialized(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	b := NewBlock()
	b.ChainID = "testchain"
	b.Height = 7
	b.StateHash = common.HexToHash("s7")
	b.Timestamp = big.NewInt(0)
	expected := b.Hash()

	raw, err := rlp.EncodeToBytes(b)
	require.Nil(err)
	decoded := &Block{}
	require.Nil(rlp.DecodeBytes(raw, decoded))

	// The cached hash is not part of the wire form, the decoded header
	// recomputes the same value.
	assert.Equal(expected, decoded.Hash())
	assert.Equal(b.Height, decoded.Height)
}

func TestBlockHeaderValidate(t *testing.T) {
	assert := assert.New(t)

	b := NewBlock()
	b.ChainID = "testchain"
	b.Height = 0
	b.Timestamp = big.NewInt(0)
	assert.True(b.Validate("testchain").IsOK())
	assert.True(b.Validate("otherchain").IsError())

	b.Height = 1
	assert.True(b.Validate("testchain").IsError()) // missing parent
	b.Parent = common.HexToHash("p1")
	assert.True(b.Validate("testchain").IsOK())
}

func TestBlockStatus(t *testing.T) {
	assert := assert.New(t)

	assert.True(BlockStatusPending.IsPending())
	assert.False(BlockStatusPending.IsValid())
	assert.True(BlockStatusValid.IsValid())
	assert.True(BlockStatusInvalid.IsInvalid())
	assert.False(BlockStatusInvalid.IsValid())
	assert.True(BlockStatusFinalized.IsFinalized())
	assert.True(BlockStatusFinalized.IsValid())
}
