package crypto

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/common"
)

func TestSignAndVerify(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk, pk, err := GenerateKeyPair()
	require.Nil(err)

	msg := common.Bytes("checkpoint payload")
	sig, err := sk.Sign(msg)
	require.Nil(err)

	assert.True(pk.VerifySignature(msg, sig))
	assert.False(pk.VerifySignature(common.Bytes("other payload"), sig))

	_, otherPk, err := GenerateKeyPair()
	require.Nil(err)
	assert.False(otherPk.VerifySignature(msg, sig))
}

func TestKeySerialization(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk, pk, err := TEST_GenerateKeyPairWithSeed("serialization")
	require.Nil(err)

	// Private key hex roundtrip.
	sk2, err := PrivateKeyFromHex(fmt.Sprintf("%x", sk.ToBytes()))
	require.Nil(err)
	assert.Equal(sk.ToBytes(), sk2.ToBytes())

	// Public key bytes and hex roundtrips.
	pk2, err := PublicKeyFromBytes(pk.ToBytes())
	require.Nil(err)
	assert.Equal(pk.ToBytes(), pk2.ToBytes())

	pk3, err := PublicKeyFromHex(fmt.Sprintf("%x", pk.ToBytes()))
	require.Nil(err)
	assert.Equal(pk.ToBytes(), pk3.ToBytes())

	_, err = PublicKeyFromHex("zzzz")
	assert.NotNil(err)
}

func TestSeededKeyPairIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk1, pk1, err := TEST_GenerateKeyPairWithSeed("master")
	require.Nil(err)
	sk2, pk2, err := TEST_GenerateKeyPairWithSeed("master")
	require.Nil(err)
	_, pk3, err := TEST_GenerateKeyPairWithSeed("other")
	require.Nil(err)

	assert.Equal(sk1.ToBytes(), sk2.ToBytes())
	assert.Equal(pk1.ToBytes(), pk2.ToBytes())
	assert.NotEqual(pk1.ToBytes(), pk3.ToBytes())
}

func TestSignatureRLP(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sk, pk, err := TEST_GenerateKeyPairWithSeed("rlp")
	require.Nil(err)

	msg := common.Bytes("payload")
	sig, err := sk.Sign(msg)
	require.Nil(err)

	raw, err := rlp.EncodeToBytes(sig)
	require.Nil(err)

	decoded := &Signature{}
	require.Nil(rlp.DecodeBytes(raw, decoded))
	assert.Equal(sig.ToBytes(), decoded.ToBytes())
	assert.True(pk.VerifySignature(msg, decoded))

	// A nil signature encodes as an empty byte string.
	var nilSig *Signature
	raw, err = rlp.EncodeToBytes(nilSig)
	require.Nil(err)
	decoded = &Signature{}
	require.Nil(rlp.DecodeBytes(raw, decoded))
	assert.True(decoded.IsEmpty())
}
