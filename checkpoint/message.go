package checkpoint

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/crypto"
)

// CheckpointMessageVersion is the current version of the checkpoint wire format.
const CheckpointMessageVersion uint16 = 1

// UnsignedSyncCheckpoint is the payload covered by the master signature.
type UnsignedSyncCheckpoint struct {
	Version        uint16
	CheckpointHash common.Hash
}

// SyncCheckpoint is a synchronized checkpoint message signed by the checkpoint
// master. RawBytes holds the exact serialized form of the unsigned payload:
// signature verification is byte-exact, so the bytes are kept verbatim rather
// than re-derived from the decoded fields.
type SyncCheckpoint struct {
	RawBytes  common.Bytes
	Signature *crypto.Signature `rlp:"nil"`

	// The unsigned payload, decoded from RawBytes only after the signature
	// has been verified.
	unsigned UnsignedSyncCheckpoint
	decoded  bool
}

// NewSyncCheckpoint creates an unsigned checkpoint message for the given block hash.
func NewSyncCheckpoint(checkpointHash common.Hash) (*SyncCheckpoint, error) {
	unsigned := UnsignedSyncCheckpoint{
		Version:        CheckpointMessageVersion,
		CheckpointHash: checkpointHash,
	}
	raw, err := rlp.EncodeToBytes(&unsigned)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize checkpoint payload")
	}
	return &SyncCheckpoint{
		RawBytes: raw,
		unsigned: unsigned,
		decoded:  true,
	}, nil
}

// Sign signs the message with the master private key. The signature covers
// the hash of RawBytes.
func (m *SyncCheckpoint) Sign(skey *crypto.PrivateKey) error {
	sig, err := skey.Sign(m.RawBytes)
	if err != nil {
		return errors.Wrap(err, "unable to sign checkpoint")
	}
	m.Signature = sig
	return nil
}

// VerifySignature verifies the signature against the given master public key.
// The unsigned fields are deserialized from RawBytes only on success; bytes
// that fail verification are never decoded.
func (m *SyncCheckpoint) VerifySignature(pubKey *crypto.PublicKey) bool {
	if m == nil || len(m.RawBytes) == 0 || pubKey.IsEmpty() {
		return false
	}
	if !pubKey.VerifySignature(m.RawBytes, m.Signature) {
		return false
	}

	// Now unserialize the data.
	var unsigned UnsignedSyncCheckpoint
	if err := rlp.DecodeBytes(m.RawBytes, &unsigned); err != nil {
		return false
	}
	m.unsigned = unsigned
	m.decoded = true
	return true
}

// CheckpointHash returns the hash of the checkpointed block. It is the zero
// hash until the message has been built locally or signature-verified.
func (m *SyncCheckpoint) CheckpointHash() common.Hash {
	if m == nil || !m.decoded {
		return common.Hash{}
	}
	return m.unsigned.CheckpointHash
}

// Version returns the version of the decoded payload.
func (m *SyncCheckpoint) Version() uint16 {
	if m == nil || !m.decoded {
		return 0
	}
	return m.unsigned.Version
}

// IsNull indicates whether the message carries no enforcement weight.
func (m *SyncCheckpoint) IsNull() bool {
	return m == nil || !m.decoded || m.unsigned.CheckpointHash.IsEmpty()
}

// Hash returns the hash of the serialized payload.
func (m *SyncCheckpoint) Hash() common.Hash {
	return crypto.Keccak256Hash(m.RawBytes)
}

func (m *SyncCheckpoint) String() string {
	if m == nil {
		return "nil"
	}
	return fmt.Sprintf("SyncCheckpoint{Version: %d, CheckpointHash: %v}",
		m.unsigned.Version, m.unsigned.CheckpointHash.Hex())
}
