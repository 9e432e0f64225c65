package core

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cinderchain/cinder/common"
)

var TestBlocks map[string]*Block = make(map[string]*Block)

func ResetTestBlocks() {
	TestBlocks = make(map[string]*Block)
}

func GetTestBlock(name string) *Block {
	name = strings.ToLower(name)
	block, ok := TestBlocks[name]
	if !ok {
		panic(fmt.Sprintf("Failed to find test block %v", name))
	}
	return block
}

// CreateTestBlock creates a block for testing.
func CreateTestBlock(name string, parent string) *Block {
	name = strings.ToLower(name)
	parent = strings.ToLower(parent)

	block := NewBlock()
	block.ChainID = "testchain"
	block.StateHash = common.HexToHash(name)
	block.Timestamp = big.NewInt(0)
	if parent != "" {
		pBlock, ok := TestBlocks[parent]
		if !ok {
			panic(fmt.Sprintf("Failed to find test block %v", parent))
		}
		block.Parent = pBlock.Hash()
		block.Height = pBlock.Height + 1
	}
	TestBlocks[name] = block
	return block
}
