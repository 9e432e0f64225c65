package core

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/common/result"
	"github.com/cinderchain/cinder/crypto"
)

// BlockHeader contains the essential information of a block.
type BlockHeader struct {
	ChainID   string
	Height    uint64
	Parent    common.Hash
	StateHash common.Hash
	Timestamp *big.Int

	hash common.Hash // Cache of calculated hash.
}

// Hash of header.
func (h *BlockHeader) Hash() common.Hash {
	if h == nil {
		return common.Hash{}
	}
	if h.hash.IsEmpty() {
		h.hash = h.calculateHash()
	}
	return h.hash
}

// UpdateHash recalculates the hash of the header.
func (h *BlockHeader) UpdateHash() common.Hash {
	if h == nil {
		return common.Hash{}
	}
	h.hash = h.calculateHash()
	return h.hash
}

func (h *BlockHeader) calculateHash() common.Hash {
	raw, _ := rlp.EncodeToBytes(h)
	return crypto.Keccak256Hash(raw)
}

func (h *BlockHeader) String() string {
	return fmt.Sprintf("{ChainID: %v, Height: %v, Hash: %v, Parent: %v, StateHash: %v, Timestamp: %v}",
		h.ChainID, h.Height, h.Hash().Hex(), h.Parent.Hex(), h.StateHash.Hex(), h.Timestamp)
}

// Validate checks the header is legitimate.
func (h *BlockHeader) Validate(chainID string) result.Result {
	if chainID != h.ChainID {
		return result.Error("ChainID mismatch")
	}
	if h.Height > 0 && h.Parent.IsEmpty() {
		return result.Error("Parent is empty")
	}
	return result.OK
}

// Block represents a block in chain.
type Block struct {
	*BlockHeader
}

// NewBlock creates a new Block.
func NewBlock() *Block {
	return &Block{BlockHeader: &BlockHeader{}}
}

func (b *Block) String() string {
	if b == nil {
		return "nil"
	}
	return fmt.Sprintf("Block{Header: %v}", b.BlockHeader)
}

type BlockStatus byte

/*
Block status transitions:

+-------+          +-------+
|Pending+---+------>Invalid|
+-------+   |      +-------+
            |
            |      +-----+        +---------+
            +------>Valid+-------->Finalized|
                   +-----+        +---------+
*/
const (
	BlockStatusPending BlockStatus = BlockStatus(iota)
	BlockStatusValid
	BlockStatusInvalid
	BlockStatusFinalized
)

func (bs BlockStatus) IsPending() bool {
	return bs == BlockStatusPending
}

func (bs BlockStatus) IsInvalid() bool {
	return bs == BlockStatusInvalid
}

func (bs BlockStatus) IsFinalized() bool {
	return bs == BlockStatusFinalized
}

// IsValid returns whether the block has been validated.
func (bs BlockStatus) IsValid() bool {
	return bs != BlockStatusPending && bs != BlockStatusInvalid
}

// ExtendedBlock is a wrapper over Block, containing extra information related to the block.
type ExtendedBlock struct {
	*Block
	Children []common.Hash
	Status   BlockStatus
}

// Hash of header.
func (eb *ExtendedBlock) Hash() common.Hash {
	if eb.Block == nil {
		return common.Hash{}
	}
	return eb.BlockHeader.Hash()
}

func (eb *ExtendedBlock) String() string {
	return fmt.Sprintf("ExtendedBlock{Block: %v, Children: %v, Status: %v}", eb.Block, eb.Children, eb.Status)
}

// ShortString returns a short string describing the block.
func (eb *ExtendedBlock) ShortString() string {
	return eb.Hash().String()
}
