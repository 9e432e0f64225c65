package checkpoint

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/crypto"
)

func TestSyncCheckpointSignVerify(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed("master")
	require.Nil(err)

	blockHash := common.HexToHash("a3")
	msg, err := NewSyncCheckpoint(blockHash)
	require.Nil(err)
	require.Nil(msg.Sign(sk))

	assert.True(msg.VerifySignature(pk))
	assert.Equal(blockHash, msg.CheckpointHash())
	assert.Equal(CheckpointMessageVersion, msg.Version())
	assert.False(msg.IsNull())

	// A different key must not verify.
	_, otherPk, err := crypto.TEST_GenerateKeyPairWithSeed("intruder")
	require.Nil(err)
	assert.False(msg.VerifySignature(otherPk))

	// Tampering with the payload invalidates the signature.
	tampered := &SyncCheckpoint{
		RawBytes:  append(common.Bytes{}, msg.RawBytes...),
		Signature: msg.Signature,
	}
	tampered.RawBytes[len(tampered.RawBytes)-1] ^= 0x01
	assert.False(tampered.VerifySignature(pk))
}

func TestSyncCheckpointDecodeAfterVerify(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed("master")
	require.Nil(err)

	blockHash := common.HexToHash("b7")
	msg, err := NewSyncCheckpoint(blockHash)
	require.Nil(err)
	require.Nil(msg.Sign(sk))

	raw, err := rlp.EncodeToBytes(msg)
	require.Nil(err)

	// A freshly decoded message exposes no payload fields until the
	// signature has been verified.
	received := &SyncCheckpoint{}
	require.Nil(rlp.DecodeBytes(raw, received))
	assert.True(received.CheckpointHash().IsEmpty())
	assert.Equal(uint16(0), received.Version())
	assert.True(received.IsNull())

	assert.True(received.VerifySignature(pk))
	assert.Equal(blockHash, received.CheckpointHash())
	assert.Equal(msg.Hash(), received.Hash())
}

func TestSyncCheckpointUnsigned(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	_, pk, err := crypto.TEST_GenerateKeyPairWithSeed("master")
	require.Nil(err)

	msg, err := NewSyncCheckpoint(common.HexToHash("c1"))
	require.Nil(err)
	assert.False(msg.VerifySignature(pk))

	var nilMsg *SyncCheckpoint
	assert.True(nilMsg.IsNull())
	assert.False(nilMsg.VerifySignature(pk))
}
