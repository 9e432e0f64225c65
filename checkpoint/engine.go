package checkpoint

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/common/result"
	"github.com/cinderchain/cinder/crypto"
	"github.com/cinderchain/cinder/dispatcher"
	p2ptypes "github.com/cinderchain/cinder/p2p/types"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "checkpoint"})

// Outcome describes what the acceptance engine did with a checkpoint message.
type Outcome int

const (
	// OutcomeInvalid is the zero value, reported on error paths where the
	// message never reached a terminal decision.
	OutcomeInvalid Outcome = iota

	// OutcomeCommitted means the checkpoint became the enforced one.
	OutcomeCommitted

	// OutcomePending means the checkpointed block has not been connected yet,
	// the message is parked for retry.
	OutcomePending

	// OutcomeIgnoredOlder means the checkpoint lies on the committed
	// checkpoint's own history and carries no new information.
	OutcomeIgnoredOlder

	// OutcomeRejectedInvalidSignature means the master signature did not verify.
	OutcomeRejectedInvalidSignature

	// OutcomeRejectedInconsistent means the checkpoint conflicts with the
	// enforced one despite a valid signature.
	OutcomeRejectedInconsistent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomePending:
		return "pending"
	case OutcomeIgnoredOlder:
		return "ignored_older"
	case OutcomeRejectedInvalidSignature:
		return "rejected_invalid_signature"
	case OutcomeRejectedInconsistent:
		return "rejected_inconsistent"
	default:
		return "invalid"
	}
}

//
// Engine drives the sync checkpoint state machine: it verifies, validates and
// commits checkpoint messages, retries pending ones, and relays accepted ones.
// A single mutex serializes every state transition.
//
type Engine struct {
	mu sync.Mutex

	chain      *blockchain.Chain
	state      *State
	dispatcher *dispatcher.Dispatcher

	masterPubKey  *crypto.PublicKey
	masterPrivKey *crypto.PrivateKey

	incoming chan p2ptypes.Message

	// Life cycle
	wg      *sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// NewEngine creates an Engine instance. The configured master public key is
// compared against the persisted one: a mismatch means the network rotated the
// master key, in which case the enforced checkpoint is reset to the chain root
// before the new key is recorded.
func NewEngine(chain *blockchain.Chain, state *State, disp *dispatcher.Dispatcher) (*Engine, error) {
	pubKeyStr := viper.GetString(common.CfgCheckpointPubKey)
	pubKey, err := crypto.PublicKeyFromHex(pubKeyStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid checkpoint master public key")
	}

	e := &Engine{
		chain:        chain,
		state:        state,
		dispatcher:   disp,
		masterPubKey: pubKey,
		incoming:     make(chan p2ptypes.Message, viper.GetInt(common.CfgCheckpointMessageQueueSize)),
		wg:           &sync.WaitGroup{},
	}

	if err := e.checkMasterPubKey(pubKeyStr); err != nil {
		return nil, err
	}
	return e, nil
}

// checkMasterPubKey resets the checkpoint state when the configured master key
// differs from the persisted one.
func (e *Engine) checkMasterPubKey(pubKeyStr string) error {
	stored := e.state.ReadMasterPubKey()
	if stored == pubKeyStr {
		return nil
	}
	if stored != "" {
		logger.WithFields(log.Fields{
			"old": stored,
			"new": pubKeyStr,
		}).Warn("Checkpoint master key changed, resetting sync checkpoint")

		root := e.chain.Root()
		if root == nil {
			return errors.New("chain root not found while resetting sync checkpoint")
		}
		if err := e.state.Commit(root.Hash(), root, nil); err != nil {
			return errors.Wrap(err, "failed to reset sync checkpoint")
		}
	}
	if err := e.state.WriteMasterPubKey(pubKeyStr); err != nil {
		return err
	}
	return nil
}

// SetMasterPrivKey configures the master private key, turning this node into
// the checkpoint master. The key must match the configured public key.
func (e *Engine) SetMasterPrivKey(keyHex string) error {
	privKey, err := crypto.PrivateKeyFromHex(keyHex)
	if err != nil {
		return errors.Wrap(err, "invalid checkpoint master private key")
	}
	derived := privKey.PublicKey().ToBytes()
	if !bytes.Equal(derived, e.masterPubKey.ToBytes()) {
		return errors.New("checkpoint master private key does not match the configured public key")
	}
	e.mu.Lock()
	e.masterPrivKey = privKey
	e.mu.Unlock()
	return nil
}

// IsMaster indicates whether this node holds the master private key.
func (e *Engine) IsMaster() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.masterPrivKey != nil
}

// CommittedCheckpointHash returns the hash of the enforced checkpoint block.
func (e *Engine) CommittedCheckpointHash() common.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CommittedHash()
}

// PendingCheckpointHash returns the hash of the pending checkpoint block, if any.
func (e *Engine) PendingCheckpointHash() common.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.PendingHash()
}

// ProcessCheckpoint runs a checkpoint message through the acceptance state
// machine. senderID identifies the peer the message came from and may be empty
// for locally issued checkpoints. Accepted checkpoints are relayed to peers
// outside the engine lock.
func (e *Engine) ProcessCheckpoint(msg *SyncCheckpoint, senderID string) (Outcome, result.Result) {
	if !msg.VerifySignature(e.masterPubKey) {
		logger.WithFields(log.Fields{"sender": senderID}).Warn("Checkpoint signature verification failed")
		return OutcomeRejectedInvalidSignature,
			result.Error("invalid checkpoint signature").WithErrorCode(result.CodeInvalidSignature)
	}

	e.mu.Lock()
	outcome, res := e.acceptCheckpoint(msg)
	var ownMsg *SyncCheckpoint
	var ownHash common.Hash
	if outcome == OutcomeIgnoredOlder || outcome == OutcomeRejectedInconsistent {
		ownMsg = e.state.CommittedMessage()
		ownHash = e.state.CommittedHash()
	}
	e.mu.Unlock()

	if outcome == OutcomeCommitted {
		if senderID != "" {
			e.dispatcher.RecordCheckpointKnown(senderID, msg.CheckpointHash())
		}
		e.dispatcher.RelayCheckpoint(msg.CheckpointHash(), msg)
	} else if ownMsg != nil && senderID != "" {
		// The sender is behind (or conflicting): answer with the checkpoint
		// we enforce.
		e.dispatcher.RelayCheckpointTo(senderID, ownHash, ownMsg)
	}
	return outcome, res
}

// acceptCheckpoint applies the acceptance rules to a signature-verified
// message. Caller must hold e.mu.
func (e *Engine) acceptCheckpoint(msg *SyncCheckpoint) (Outcome, result.Result) {
	hash := msg.CheckpointHash()
	if hash.IsEmpty() {
		return OutcomeInvalid, result.Error("null checkpoint hash")
	}

	if !e.chain.HasBlock(hash) {
		// We haven't received the checkpoint block yet, park the message.
		e.state.SetPending(hash, msg)
		logger.WithFields(log.Fields{"checkpoint": hash.Hex()}).Info("Checkpoint block not yet in index, pending")
		return OutcomePending, result.OK
	}

	committed := e.state.CommittedHash()
	if !committed.IsEmpty() {
		newer, err := validateCandidate(e.chain, hash, committed)
		if err == ErrInconsistentCheckpoint {
			if e.state.PendingHash() == hash {
				e.state.ClearPending()
			}
			logger.WithFields(log.Fields{
				"checkpoint": hash.Hex(),
				"committed":  committed.Hex(),
			}).Warn("Conflicting sync checkpoint received, possible compromised master key")
			return OutcomeRejectedInconsistent,
				result.Error("checkpoint %v conflicts with committed checkpoint %v", hash.Hex(), committed.Hex()).
					WithErrorCode(result.CodeInconsistentCheckpoint)
		}
		if err == blockchain.ErrBrokenChain {
			return OutcomeInvalid,
				result.Error("chain integrity failure while validating checkpoint %v: %v", hash.Hex(), err).
					WithErrorCode(result.CodeChainIntegrityFailure)
		}
		if err != nil {
			return OutcomeInvalid, result.Error("failed to validate checkpoint %v: %v", hash.Hex(), err)
		}
		if !newer {
			return OutcomeIgnoredOlder, result.OK
		}
	}

	block, err := e.chain.FindBlock(hash)
	if err != nil {
		return OutcomeInvalid, result.Error("checkpoint block %v disappeared from index: %v", hash.Hex(), err)
	}
	onMain, err := e.chain.IsMainChain(hash, block.Height)
	if err == blockchain.ErrBrokenChain {
		return OutcomeInvalid,
			result.Error("chain integrity failure while validating checkpoint %v: %v", hash.Hex(), err).
				WithErrorCode(result.CodeChainIntegrityFailure)
	}
	if err != nil {
		return OutcomeInvalid, result.Error("failed to validate checkpoint %v: %v", hash.Hex(), err)
	}
	if !onMain {
		// Valid but not yet on the active chain, park it until the chain
		// catches up.
		e.state.SetPending(hash, msg)
		logger.WithFields(log.Fields{"checkpoint": hash.Hex()}).Info("Checkpoint block not on active chain yet, pending")
		return OutcomePending, result.OK
	}
	return e.commitCheckpoint(hash, msg)
}

// commitCheckpoint durably commits the checkpoint. Caller must hold e.mu.
func (e *Engine) commitCheckpoint(hash common.Hash, msg *SyncCheckpoint) (Outcome, result.Result) {
	block, err := e.chain.FindBlock(hash)
	if err != nil {
		return OutcomeInvalid, result.Error("checkpoint block %v disappeared from index: %v", hash.Hex(), err)
	}
	if err := e.state.Commit(hash, block, msg); err != nil {
		return OutcomeInvalid,
			result.Error("failed to persist checkpoint %v: %v", hash.Hex(), err).
				WithErrorCode(result.CodePersistenceFailure)
	}
	logger.WithFields(log.Fields{
		"checkpoint": hash.Hex(),
		"height":     block.Height,
	}).Info("Sync checkpoint committed")
	return OutcomeCommitted, result.OK
}

// AcceptPendingCheckpoint retries the pending checkpoint, typically after new
// blocks have been connected. It reports whether a commit happened. A pending
// checkpoint whose block is still absent stays parked; one whose block is known
// but fails validation is dropped.
func (e *Engine) AcceptPendingCheckpoint() (bool, error) {
	e.mu.Lock()

	hash := e.state.PendingHash()
	msg := e.state.PendingMessage()
	if hash.IsEmpty() || msg == nil {
		e.mu.Unlock()
		return false, nil
	}
	if !e.chain.HasBlock(hash) {
		e.mu.Unlock()
		return false, nil
	}

	committed := e.state.CommittedHash()
	if !committed.IsEmpty() {
		newer, err := validateCandidate(e.chain, hash, committed)
		if err == blockchain.ErrBrokenChain {
			// Index corruption, keep the pending checkpoint and escalate.
			e.mu.Unlock()
			return false, err
		}
		if err != nil || !newer {
			// The pending checkpoint turned out stale or conflicting, drop it.
			e.state.ClearPending()
			e.mu.Unlock()
			if err != nil {
				logger.WithFields(log.Fields{"checkpoint": hash.Hex()}).Warn("Dropping invalid pending checkpoint")
				return false, err
			}
			return false, nil
		}
	}

	block, err := e.chain.FindBlock(hash)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	onMain, err := e.chain.IsMainChain(hash, block.Height)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	if !onMain {
		// Still waiting for the active chain to reach the checkpoint.
		e.mu.Unlock()
		return false, nil
	}

	outcome, res := e.commitCheckpoint(hash, msg)
	e.mu.Unlock()

	if outcome != OutcomeCommitted {
		return false, errors.New(res.Message)
	}
	e.dispatcher.RelayCheckpoint(hash, msg)
	return true, nil
}

// IssueCheckpoint signs and publishes a checkpoint for the given block hash.
// The signed message goes through the same acceptance path as messages
// received from peers, so the issuing node enforces what it publishes.
func (e *Engine) IssueCheckpoint(hash common.Hash) result.Result {
	if hash.IsEmpty() {
		logger.Debug("Skipping checkpoint issuance, null block hash")
		return result.OK
	}
	e.mu.Lock()
	privKey := e.masterPrivKey
	e.mu.Unlock()
	if privKey == nil {
		return result.Error("checkpoint master private key unavailable").
			WithErrorCode(result.CodeMasterKeyUnavailable)
	}
	if e.dispatcher.PeerCount() == 0 {
		logger.Debug("Skipping checkpoint issuance, no connected peers")
		return result.OK
	}

	msg, err := NewSyncCheckpoint(hash)
	if err != nil {
		return result.Error("failed to build checkpoint for %v: %v", hash.Hex(), err)
	}
	if err := msg.Sign(privKey); err != nil {
		return result.Error("failed to sign checkpoint for %v: %v", hash.Hex(), err)
	}

	outcome, res := e.ProcessCheckpoint(msg, "")
	if res.IsError() {
		return res
	}
	logger.WithFields(log.Fields{
		"checkpoint": hash.Hex(),
		"outcome":    outcome.String(),
	}).Info("Issued sync checkpoint")
	return result.OK
}

// ---------------------------- Life cycle ---------------------------- //

// Start spawns the engine main loop.
func (e *Engine) Start(ctx context.Context) error {
	c, cancel := context.WithCancel(ctx)
	e.ctx = c
	e.cancel = cancel

	e.wg.Add(1)
	go e.mainLoop()
	return nil
}

// Stop signals the main loop to exit.
func (e *Engine) Stop() error {
	e.cancel()
	return nil
}

// Wait blocks until the main loop has exited.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) mainLoop() {
	defer e.wg.Done()

	retryInterval := time.Duration(viper.GetInt(common.CfgCheckpointRetryInterval)) * time.Second
	retryTicker := time.NewTicker(retryInterval)
	defer retryTicker.Stop()

	var autoIssueC <-chan time.Time
	if e.IsMaster() && viper.GetBool(common.CfgCheckpointAutoIssue) {
		interval := time.Duration(viper.GetInt(common.CfgCheckpointAutoIssueInterval)) * time.Second
		autoIssueTicker := time.NewTicker(interval)
		defer autoIssueTicker.Stop()
		autoIssueC = autoIssueTicker.C
	}

	for {
		select {
		case <-e.ctx.Done():
			e.stopped = true
			return
		case message := <-e.incoming:
			e.handleIncoming(message)
		case <-retryTicker.C:
			if _, err := e.AcceptPendingCheckpoint(); err != nil {
				logger.WithFields(log.Fields{"error": err}).Warn("Pending checkpoint retry failed")
			}
		case <-autoIssueC:
			if res := e.AutoSelectAndIssue(); res.IsError() {
				logger.WithFields(log.Fields{"error": res.Message}).Warn("Automatic checkpoint issuance failed")
			}
		}
	}
}

func (e *Engine) handleIncoming(message p2ptypes.Message) {
	msg, ok := message.Content.(*SyncCheckpoint)
	if !ok {
		logger.WithFields(log.Fields{"peer": message.PeerID}).Warn("Unexpected checkpoint message content")
		return
	}
	outcome, res := e.ProcessCheckpoint(msg, message.PeerID)
	if res.IsError() {
		logger.WithFields(log.Fields{
			"peer":    message.PeerID,
			"outcome": outcome.String(),
			"error":   res.Message,
		}).Warn("Checkpoint message rejected")
	}
}

// ---------------------------- Message handler ---------------------------- //

// GetChannelIDs implements the p2p.MessageHandler interface.
func (e *Engine) GetChannelIDs() []common.ChannelIDEnum {
	return []common.ChannelIDEnum{common.ChannelIDCheckpoint}
}

// ParseMessage implements the p2p.MessageHandler interface.
func (e *Engine) ParseMessage(peerID string, channelID common.ChannelIDEnum, rawMessageBytes common.Bytes) (p2ptypes.Message, error) {
	msg := &SyncCheckpoint{}
	if err := rlp.DecodeBytes(rawMessageBytes, msg); err != nil {
		return p2ptypes.Message{}, errors.Wrap(err, "failed to parse checkpoint message")
	}
	return p2ptypes.Message{
		PeerID:    peerID,
		ChannelID: channelID,
		Content:   msg,
	}, nil
}

// HandleMessage implements the p2p.MessageHandler interface.
func (e *Engine) HandleMessage(message p2ptypes.Message) error {
	e.incoming <- message
	return nil
}
