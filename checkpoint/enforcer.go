package checkpoint

import (
	log "github.com/sirupsen/logrus"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/common"
)

// IsBlockAcceptable decides whether a block at the given height may be
// accepted under the enforced checkpoint. Blocks above the checkpoint height
// are acceptable only while the active tip still descends from the checkpoint;
// the block at the checkpoint height must be the checkpoint itself; blocks
// below must already be in the block index (they arrived on the history the
// checkpoint locked in).
func (e *Engine) IsBlockAcceptable(hash common.Hash, height uint64) (bool, error) {
	if height == 0 {
		return true, nil
	}

	e.mu.Lock()
	committed := e.state.CommittedHash()
	sync := e.state.CommittedBlock()
	if committed.IsEmpty() {
		e.mu.Unlock()
		return true, nil
	}
	if sync == nil || sync.Hash() != committed {
		var err error
		sync, err = e.chain.FindBlock(committed)
		if err != nil {
			e.mu.Unlock()
			return false, err
		}
		e.state.SetCommittedBlock(sync)
	}
	e.mu.Unlock()

	if height > sync.Height {
		tip := e.chain.Tip()
		if tip == nil {
			return false, blockchain.ErrBlockNotFound
		}
		ancestor, err := e.chain.AncestorAtHeight(tip.Hash(), sync.Height)
		if err != nil {
			// A broken walk here means the local index lost the checkpoint's
			// history; refusing the block is the only safe answer.
			return false, err
		}
		if ancestor.Hash() != committed {
			logger.WithFields(log.Fields{
				"block":      hash.Hex(),
				"height":     height,
				"checkpoint": committed.Hex(),
			}).Warn("Rejecting block, active tip abandoned the sync checkpoint")
			return false, nil
		}
		return true, nil
	}

	if height == sync.Height {
		return hash == committed, nil
	}

	return e.chain.HasBlock(hash), nil
}
