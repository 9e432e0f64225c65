package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"io"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cinderchain/cinder/common"
)

//
// PublicKey represents the public key
//
type PublicKey struct {
	pubKey *ecdsa.PublicKey
}

// PublicKeyFromBytes creates a public key from the given bytes (uncompressed 65 byte format).
func PublicKeyFromBytes(pkBytes common.Bytes) (*PublicKey, error) {
	pubKey, err := ethcrypto.UnmarshalPubkey(pkBytes)
	if err != nil {
		return nil, err
	}
	return &PublicKey{pubKey: pubKey}, nil
}

// PublicKeyFromHex creates a public key from the given hex string.
func PublicKeyFromHex(pkStr string) (*PublicKey, error) {
	pkBytes := common.FromHex(pkStr)
	if pkBytes == nil {
		return nil, errors.New("invalid public key hex string")
	}
	return PublicKeyFromBytes(pkBytes)
}

// ToBytes returns the bytes representation of the public key.
func (pk *PublicKey) ToBytes() common.Bytes {
	return ethcrypto.FromECDSAPub(pk.pubKey)
}

// IsEmpty indicates whether the public key is empty.
func (pk *PublicKey) IsEmpty() bool {
	return pk == nil || pk.pubKey == nil || pk.pubKey.X == nil || pk.pubKey.Y == nil
}

// VerifySignature verifies the signature with the public key (sig over the Keccak256 hash of msg).
func (pk *PublicKey) VerifySignature(msg common.Bytes, sig *Signature) bool {
	if sig == nil || sig.IsEmpty() {
		return false
	}
	msgHash := Keccak256(msg)
	sigBytes := sig.ToBytes()
	if len(sigBytes) < 64 {
		return false
	}
	// Strip the recovery id, ethcrypto expects the 64 byte [R || S] format.
	return ethcrypto.VerifySignature(pk.ToBytes(), msgHash, sigBytes[:64])
}

//
// PrivateKey represents the private key
//
type PrivateKey struct {
	privKey *ecdsa.PrivateKey
}

// PrivateKeyFromHex creates a private key from the given hex string.
func PrivateKeyFromHex(skStr string) (*PrivateKey, error) {
	privKey, err := ethcrypto.HexToECDSA(skStr)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{privKey: privKey}, nil
}

// PublicKey returns the public key corresponding to the private key.
func (sk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{pubKey: &sk.privKey.PublicKey}
}

// ToBytes returns the bytes representation of the private key.
func (sk *PrivateKey) ToBytes() common.Bytes {
	return ethcrypto.FromECDSA(sk.privKey)
}

// Sign signs the given message with the private key. The message is hashed
// with Keccak256 prior to signing.
func (sk *PrivateKey) Sign(msg common.Bytes) (*Signature, error) {
	msgHash := Keccak256(msg)
	sigBytes, err := ethcrypto.Sign(msgHash, sk.privKey)
	if err != nil {
		return nil, err
	}
	return &Signature{data: sigBytes}, nil
}

//
// Signature represents the digital signature
//
type Signature struct {
	data common.Bytes
}

// SignatureFromBytes creates a signature from the given bytes.
func SignatureFromBytes(sigBytes common.Bytes) (*Signature, error) {
	if len(sigBytes) == 0 {
		return nil, errors.New("empty signature bytes")
	}
	return &Signature{data: common.CopyBytes(sigBytes)}, nil
}

// ToBytes returns the bytes representation of the signature.
func (sig *Signature) ToBytes() common.Bytes {
	if sig == nil {
		return nil
	}
	return sig.data
}

// IsEmpty indicates whether the signature is empty.
func (sig *Signature) IsEmpty() bool {
	return sig == nil || len(sig.data) == 0
}

// EncodeRLP implements the rlp.Encoder interface.
func (sig *Signature) EncodeRLP(w io.Writer) error {
	if sig == nil {
		return rlp.Encode(w, common.Bytes{})
	}
	return rlp.Encode(w, sig.data)
}

// DecodeRLP implements the rlp.Decoder interface.
func (sig *Signature) DecodeRLP(s *rlp.Stream) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	sig.data = b
	return nil
}

// GenerateKeyPair generates a random private/public key pair.
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	ske, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &PrivateKey{privKey: ske}, &PublicKey{pubKey: &ske.PublicKey}, nil
}

// ----------------------- Crypto Utils for Other Modules ----------------------- //

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	return common.BytesToHash(ethcrypto.Keccak256(data...))
}
