package checkpoint

import (
	"github.com/pkg/errors"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/common"
)

var (
	// ErrInconsistentCheckpoint is returned when a signed checkpoint conflicts
	// with the currently enforced one. Since both carry valid master signatures,
	// this points at a compromised master key or an operator mistake.
	ErrInconsistentCheckpoint = errors.New("inconsistent sync checkpoint")
)

// validateCandidate checks the ancestry relation between a candidate checkpoint
// block and the committed one. It returns whether the candidate is strictly
// newer than the committed checkpoint (i.e. a descendant at a greater height).
//
// Both blocks must already be present in the block index; the caller is
// responsible for deferring candidates whose block has not arrived yet.
// blockchain.ErrBrokenChain escalates unchanged: a broken parent link is local
// index corruption, not evidence against the candidate.
func validateCandidate(chain *blockchain.Chain, candidateHash, committedHash common.Hash) (newer bool, err error) {
	candidate, err := chain.FindBlock(candidateHash)
	if err != nil {
		return false, err
	}
	committed, err := chain.FindBlock(committedHash)
	if err != nil {
		return false, err
	}

	if candidate.Height <= committed.Height {
		// The candidate is older (or same height). It is acceptable only if it
		// lies on the committed checkpoint's own history.
		ancestor, err := chain.AncestorAtHeight(committedHash, candidate.Height)
		if err != nil {
			return false, err
		}
		if ancestor.Hash() != candidateHash {
			return false, ErrInconsistentCheckpoint
		}
		return false, nil
	}

	// The candidate is newer. It must descend from the committed checkpoint.
	ancestor, err := chain.AncestorAtHeight(candidateHash, committed.Height)
	if err != nil {
		return false, err
	}
	if ancestor.Hash() != committedHash {
		return false, ErrInconsistentCheckpoint
	}
	return true, nil
}
