package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/core"
)

func TestValidateCandidateAncestry(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	core.ResetTestBlocks()

	chain := blockchain.CreateTestChainByBlocks([]string{
		"a1", "a0",
		"a2", "a1",
		"c3", "a2",
		"c4", "c3",
		"a3", "a2",
		"a4", "a3",
		"a5", "a4",
	})
	committed := core.GetTestBlock("a3").Hash()

	// A descendant of the committed checkpoint is a valid newer candidate.
	newer, err := validateCandidate(chain, core.GetTestBlock("a5").Hash(), committed)
	require.Nil(err)
	assert.True(newer)

	// An ancestor of the committed checkpoint carries no new information.
	newer, err = validateCandidate(chain, core.GetTestBlock("a2").Hash(), committed)
	require.Nil(err)
	assert.False(newer)

	// The committed checkpoint itself is its own ancestor.
	newer, err = validateCandidate(chain, committed, committed)
	require.Nil(err)
	assert.False(newer)
}

func TestValidateCandidateConflicts(t *testing.T) {
	assert := assert.New(t)
	core.ResetTestBlocks()

	chain := blockchain.CreateTestChainByBlocks([]string{
		"a1", "a0",
		"a2", "a1",
		"c3", "a2",
		"c4", "c3",
		"a3", "a2",
		"a4", "a3",
	})
	committed := core.GetTestBlock("a3").Hash()

	// A same-height block on a fork conflicts with the committed checkpoint.
	_, err := validateCandidate(chain, core.GetTestBlock("c3").Hash(), committed)
	assert.Equal(ErrInconsistentCheckpoint, err)

	// A higher fork block that does not descend from the checkpoint conflicts too.
	_, err = validateCandidate(chain, core.GetTestBlock("c4").Hash(), committed)
	assert.Equal(ErrInconsistentCheckpoint, err)
}

func TestValidateCandidateBrokenIndex(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	core.ResetTestBlocks()

	chain := blockchain.CreateTestChainByBlocks([]string{
		"a1", "a0",
		"a2", "a1",
	})
	committed := core.GetTestBlock("a2").Hash()

	// An orphan whose parents were never connected: the walk reports index
	// corruption rather than an inconsistency.
	core.CreateTestBlock("m3", "a2")
	core.CreateTestBlock("m4", "m3")
	orphan := core.CreateTestBlock("m5", "m4")
	_, err := chain.AddBlock(orphan)
	require.Nil(err)

	_, err = validateCandidate(chain, orphan.Hash(), committed)
	assert.Equal(blockchain.ErrBrokenChain, err)
}
