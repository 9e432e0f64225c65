package blockchain

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/core"
	"github.com/cinderchain/cinder/store"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "blockchain"})

var (
	// ErrBlockNotFound is returned when a hash cannot be resolved in the block index.
	ErrBlockNotFound = errors.New("block not found in index")

	// ErrBrokenChain is returned when an ancestor walk hits a missing parent link
	// before reaching the target height. This indicates local block index
	// corruption, not a property of the block being examined.
	ErrBrokenChain = errors.New("missing parent link - block index structure failure")
)

// Chain represents the blockchain and also is the interface to the underlying store.
type Chain struct {
	store store.Store

	ChainID string
	root    common.Hash
	tip     common.Hash

	mu *sync.RWMutex
}

// NewChain creates a new Chain instance.
func NewChain(chainID string, store store.Store, root *core.Block) *Chain {
	chain := &Chain{
		ChainID: chainID,
		store:   store,
		mu:      &sync.RWMutex{},
	}
	rootBlock, err := chain.FindBlock(root.Hash())
	if err != nil {
		logger.WithFields(log.Fields{"Hash": root.Hash().Hex()}).Info("Root block is not found in chain. Adding block.")
		rootBlock, err = chain.addBlock(root)
		if err != nil {
			logger.Panic(err)
		}
	}
	chain.root = rootBlock.Hash()
	chain.tip = rootBlock.Hash()
	return chain
}

// Root returns the root block.
func (ch *Chain) Root() *core.ExtendedBlock {
	ret, _ := ch.FindBlock(ch.root)
	return ret
}

// AddBlock adds a block to the chain and the underlying store.
func (ch *Chain) AddBlock(block *core.Block) (*core.ExtendedBlock, error) {
	return ch.addBlock(block)
}

func (ch *Chain) addBlock(block *core.Block) (*core.ExtendedBlock, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if block.ChainID != ch.ChainID {
		return nil, errors.Errorf("ChainID mismatch: block.ChainID(%s) != %s", block.ChainID, ch.ChainID)
	}

	val := &core.ExtendedBlock{}
	hash := block.Hash()
	err := ch.store.Get(hash[:], val)
	if err == nil {
		// Block has already been added.
		return val, fmt.Errorf("Block has already been added: %X", hash[:])
	}

	// Update parent if present.
	if !block.Parent.IsEmpty() {
		parentBlock, err := ch.findBlock(block.Parent)
		if err == nil {
			parentBlock.Children = append(parentBlock.Children, hash)
			err = ch.saveBlock(parentBlock)
			if err != nil {
				logger.Panic(err)
			}
		}
	}

	extendedBlock := &core.ExtendedBlock{Block: block, Children: []common.Hash{}}

	err = ch.saveBlock(extendedBlock)
	if err != nil {
		logger.Panic(err)
	}

	ch.addBlockByHeightIndex(extendedBlock.Height, extendedBlock.Hash())

	return extendedBlock, nil
}

// blockByHeightIndexKey constructs the DB key for the given block height.
func blockByHeightIndexKey(height uint64) common.Bytes {
	// convert uint64 to []byte
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, height)
	b := buf[:n]
	return append(common.Bytes("bh/"), b...)
}

type BlockByHeightIndexEntry struct {
	Blocks []common.Hash
}

func (ch *Chain) addBlockByHeightIndex(height uint64, block common.Hash) {
	key := blockByHeightIndexKey(height)
	blockByHeightIndexEntry := BlockByHeightIndexEntry{
		Blocks: []common.Hash{},
	}

	ch.store.Get(key, &blockByHeightIndexEntry)

	// Check if block has already been added to the index.
	for _, b := range blockByHeightIndexEntry.Blocks {
		if block == b {
			return
		}
	}

	blockByHeightIndexEntry.Blocks = append(blockByHeightIndexEntry.Blocks, block)

	err := ch.store.Put(key, blockByHeightIndexEntry)
	if err != nil {
		logger.Panic(err)
	}
}

// FindBlocksByHeight tries to retrieve blocks by height.
func (ch *Chain) FindBlocksByHeight(height uint64) []*core.ExtendedBlock {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.findBlocksByHeight(height)
}

// findBlocksByHeight is the non-locking version of FindBlocksByHeight.
func (ch *Chain) findBlocksByHeight(height uint64) []*core.ExtendedBlock {
	key := blockByHeightIndexKey(height)
	blockByHeightIndexEntry := BlockByHeightIndexEntry{
		Blocks: []common.Hash{},
	}
	ch.store.Get(key, &blockByHeightIndexEntry)

	ret := []*core.ExtendedBlock{}
	for _, hash := range blockByHeightIndexEntry.Blocks {
		block, err := ch.findBlock(hash)
		if err == nil {
			ret = append(ret, block)
		}
	}
	return ret
}

// MarkBlockValid marks a block as valid.
func (ch *Chain) MarkBlockValid(hash common.Hash) *core.ExtendedBlock {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	block, err := ch.findBlock(hash)
	if err != nil {
		logger.Panic(err)
	}
	block.Status = core.BlockStatusValid
	err = ch.saveBlock(block)
	if err != nil {
		logger.Panic(err)
	}
	return block
}

// MarkBlockInvalid marks a block as invalid.
func (ch *Chain) MarkBlockInvalid(hash common.Hash) *core.ExtendedBlock {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	block, err := ch.findBlock(hash)
	if err != nil {
		logger.Panic(err)
	}
	block.Status = core.BlockStatusInvalid
	err = ch.saveBlock(block)
	if err != nil {
		logger.Panic(err)
	}
	return block
}

// saveBlock updates a previously stored block.
func (ch *Chain) saveBlock(block *core.ExtendedBlock) error {
	hash := block.Hash()
	return ch.store.Put(hash[:], block)
}

// FindBlock tries to retrieve a block by hash.
func (ch *Chain) FindBlock(hash common.Hash) (*core.ExtendedBlock, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.findBlock(hash)
}

// findBlock is the non-locking version of FindBlock.
func (ch *Chain) findBlock(hash common.Hash) (*core.ExtendedBlock, error) {
	var block core.ExtendedBlock
	err := ch.store.Get(hash[:], &block)
	if err != nil {
		if err == store.ErrKeyNotFound {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return &block, nil
}

// HasBlock returns whether a block is present in the block index.
func (ch *Chain) HasBlock(hash common.Hash) bool {
	_, err := ch.FindBlock(hash)
	return err == nil
}

// Tip returns the tip of the active chain.
func (ch *Chain) Tip() *core.ExtendedBlock {
	ch.mu.RLock()
	tip := ch.tip
	ch.mu.RUnlock()
	ret, _ := ch.FindBlock(tip)
	return ret
}

// SetTip sets the tip of the active chain. The block must already exist in
// the block index.
func (ch *Chain) SetTip(hash common.Hash) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	_, err := ch.findBlock(hash)
	if err != nil {
		return err
	}
	ch.tip = hash
	return nil
}

// AncestorAtHeight walks the parent links from the given block down to the
// target height and returns the ancestor found there. The entire walk happens
// under a single lock acquisition so a concurrent reorg cannot be observed
// mid-walk.
func (ch *Chain) AncestorAtHeight(hash common.Hash, height uint64) (*core.ExtendedBlock, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	block, err := ch.findBlock(hash)
	if err != nil {
		return nil, err
	}
	if height > block.Height {
		return nil, errors.Errorf("target height %v is above block %v at height %v", height, hash.Hex(), block.Height)
	}
	for block.Height > height {
		if block.Parent.IsEmpty() {
			return nil, ErrBrokenChain
		}
		block, err = ch.findBlock(block.Parent)
		if err != nil {
			return nil, ErrBrokenChain
		}
	}
	return block, nil
}

// IsMainChain returns whether the block with the given hash and height lies
// on the active chain, i.e. whether the active tip descends from it.
func (ch *Chain) IsMainChain(hash common.Hash, height uint64) (bool, error) {
	ch.mu.RLock()
	tip := ch.tip
	ch.mu.RUnlock()

	tipBlock, err := ch.FindBlock(tip)
	if err != nil {
		return false, err
	}
	if height > tipBlock.Height {
		return false, nil
	}
	ancestor, err := ch.AncestorAtHeight(tip, height)
	if err != nil {
		return false, err
	}
	return ancestor.Hash() == hash, nil
}

// PrintBranch returns the string describing the path from the root to the given leaf.
func (ch *Chain) PrintBranch(hash common.Hash) string {
	ret := []string{}
	for {
		var currBlock core.ExtendedBlock
		err := ch.store.Get(hash[:], &currBlock)
		if err != nil {
			break
		}
		ret = append(ret, hash.String())
		hash = currBlock.Parent
	}
	return fmt.Sprintf("%v", ret)
}
