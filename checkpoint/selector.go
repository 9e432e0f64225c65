package checkpoint

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/common/result"
	"github.com/cinderchain/cinder/core"
)

// AutoSelectCheckpoint picks the checkpoint candidate for automatic issuance:
// the active-chain block a configured number of blocks behind the tip. Depths
// below the minimum are clamped up, a shallow checkpoint would lock in blocks
// that may still be reorganized away.
func (e *Engine) AutoSelectCheckpoint() (*core.ExtendedBlock, error) {
	depth := uint64(viper.GetInt(common.CfgCheckpointDepth))
	if depth < common.MinimumCheckpointDepth {
		logger.WithFields(log.Fields{
			"configured": depth,
			"minimum":    common.MinimumCheckpointDepth,
		}).Warn("Configured checkpoint depth below minimum, clamping")
		depth = common.MinimumCheckpointDepth
	}

	tip := e.chain.Tip()
	if tip == nil {
		return nil, nil
	}
	var target uint64
	if tip.Height > depth {
		target = tip.Height - depth
	}
	return e.chain.AncestorAtHeight(tip.Hash(), target)
}

// AutoSelectAndIssue selects a checkpoint candidate and issues it. The root
// block is never issued, it carries no enforcement weight beyond genesis.
func (e *Engine) AutoSelectAndIssue() result.Result {
	candidate, err := e.AutoSelectCheckpoint()
	if err != nil {
		return result.Error("failed to auto-select checkpoint: %v", err)
	}
	if candidate == nil || candidate.Height == 0 {
		return result.OK
	}
	return e.IssueCheckpoint(candidate.Hash())
}
