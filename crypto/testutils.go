package crypto

import (
	"crypto/ecdsa"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/cinderchain/cinder/common"
)

//
// ----------------------------- APIs ONLY for TESTs ----------------------------- //
//
// WARNING: The following APIs are intended only for unit test cases for better repeatibility.
//          They should NOT be used in the production code.

// TEST_GenerateKeyPairWithSeed generates a private/public key pair with the given seed string
func TEST_GenerateKeyPairWithSeed(seed string) (*PrivateKey, *PublicKey, error) {
	trr := newTestRandReader(seed)
	ske, err := ecdsa.GenerateKey(ethcrypto.S256(), trr)
	if err != nil {
		return nil, nil, err
	}
	pke := &ske.PublicKey
	return &PrivateKey{privKey: ske}, &PublicKey{pubKey: pke}, nil
}

type testRandReader struct {
	seed common.Bytes
}

func newTestRandReader(seedStr string) *testRandReader {
	return &testRandReader{
		seed: []byte(seedStr),
	}
}

func (trr *testRandReader) Read(b []byte) (int, error) {
	n := copy(b[:], trr.seed)
	for i := n; i < len(b); i++ {
		b[i] = byte(i)
	}
	return len(b), nil
}
