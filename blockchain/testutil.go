package blockchain

import (
	"fmt"

	"github.com/cinderchain/cinder/core"
	"github.com/cinderchain/cinder/store/database/backend"
	"github.com/cinderchain/cinder/store/kvstore"
)

// CreateTestChain creates a chain for testing.
func CreateTestChain() *Chain {
	store := kvstore.NewKVStore(backend.NewMemDatabase())
	root := core.CreateTestBlock("a0", "")
	chain := NewChain("testchain", store, root)
	return chain
}

// CreateTestChainByBlocks creates a chain with the given string slice in format:
//
//	[block1_hash, block1_parent_hash, block2_hash, block2_parent_hash, ...]
//
// The tip is set to the last block of the slice.
func CreateTestChainByBlocks(pairs []string) *Chain {
	chain := CreateTestChain()
	for i := 0; i < len(pairs); i += 2 {
		block := core.CreateTestBlock(pairs[i], pairs[i+1])
		b, err := chain.AddBlock(block)
		if err != nil {
			panic(err)
		}
		b.Status = core.BlockStatusValid
		chain.saveBlock(b)
	}
	if len(pairs) > 0 {
		lastBlock := core.GetTestBlock(pairs[len(pairs)-2])
		if err := chain.SetTip(lastBlock.Hash()); err != nil {
			panic(err)
		}
	}
	return chain
}

// ExtendTestChain grows the chain with a linear run of blocks named
// <prefix>1, <prefix>2, ... on top of the given parent block and moves the
// tip to the last one. Returns the name of the new tip.
func ExtendTestChain(chain *Chain, parent string, prefix string, count int) string {
	name := parent
	for i := 1; i <= count; i++ {
		child := fmt.Sprintf("%s%d", prefix, i)
		block := core.CreateTestBlock(child, name)
		b, err := chain.AddBlock(block)
		if err != nil {
			panic(err)
		}
		b.Status = core.BlockStatusValid
		chain.saveBlock(b)
		name = child
	}
	if err := chain.SetTip(core.GetTestBlock(name).Hash()); err != nil {
		panic(err)
	}
	return name
}
