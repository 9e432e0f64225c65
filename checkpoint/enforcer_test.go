package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderchain/cinder/core"
)

func TestIsBlockAcceptable(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	env := newTestEnv([]string{
		"a1", "a0",
		"a2", "a1",
		"c3", "a2",
		"a3", "a2",
		"a4", "a3",
		"a5", "a4",
	})

	// Without a committed checkpoint every block passes.
	ok, err := env.engine.IsBlockAcceptable(core.GetTestBlock("c3").Hash(), 3)
	require.Nil(err)
	assert.True(ok)

	outcome, _ := env.engine.ProcessCheckpoint(env.signedCheckpoint("a3"), "peer1")
	require.Equal(OutcomeCommitted, outcome)

	// Height 0 always passes.
	ok, err = env.engine.IsBlockAcceptable(core.GetTestBlock("a0").Hash(), 0)
	require.Nil(err)
	assert.True(ok)

	// Above the checkpoint height: acceptable while the tip still descends
	// from the checkpoint, regardless of the candidate itself.
	candidate := core.CreateTestBlock("x6", "a5")
	ok, err = env.engine.IsBlockAcceptable(candidate.Hash(), 6)
	require.Nil(err)
	assert.True(ok)

	// At the checkpoint height only the checkpoint itself passes.
	ok, err = env.engine.IsBlockAcceptable(core.GetTestBlock("a3").Hash(), 3)
	require.Nil(err)
	assert.True(ok)
	ok, err = env.engine.IsBlockAcceptable(core.GetTestBlock("c3").Hash(), 3)
	require.Nil(err)
	assert.False(ok)

	// Below the checkpoint height a block must already be in the index.
	ok, err = env.engine.IsBlockAcceptable(core.GetTestBlock("a2").Hash(), 2)
	require.Nil(err)
	assert.True(ok)
	unknown := core.CreateTestBlock("y2", "a1")
	ok, err = env.engine.IsBlockAcceptable(unknown.Hash(), 2)
	require.Nil(err)
	assert.False(ok)
}

func TestIsBlockAcceptableAfterReorgAwayFromCheckpoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	env := newTestEnv([]string{
		"a1", "a0",
		"a2", "a1",
		"c3", "a2",
		"c4", "c3",
		"c5", "c4",
		"a3", "a2",
		"a4", "a3",
	})

	outcome, _ := env.engine.ProcessCheckpoint(env.signedCheckpoint("a3"), "peer1")
	require.Equal(OutcomeCommitted, outcome)

	// Reorg the active chain onto the fork that abandons the checkpoint:
	// blocks above the checkpoint height are no longer acceptable.
	require.Nil(env.chain.SetTip(core.GetTestBlock("c5").Hash()))

	candidate := core.CreateTestBlock("c6", "c5")
	ok, err := env.engine.IsBlockAcceptable(candidate.Hash(), 6)
	require.Nil(err)
	assert.False(ok)

	// Back on the checkpointed branch the gate opens again.
	require.Nil(env.chain.SetTip(core.GetTestBlock("a4").Hash()))
	ok, err = env.engine.IsBlockAcceptable(candidate.Hash(), 6)
	require.Nil(err)
	assert.True(ok)
}
