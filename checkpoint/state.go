package checkpoint

import (
	"github.com/pkg/errors"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/core"
	"github.com/cinderchain/cinder/store"
	"github.com/cinderchain/cinder/store/database"
	"github.com/cinderchain/cinder/store/kvstore"
)

const (
	// DBCheckpointHashKey is the DB key for the committed checkpoint hash.
	DBCheckpointHashKey = "cp/hash"
	// DBCheckpointPubKeyKey is the DB key for the last-seen master public key.
	DBCheckpointPubKeyKey = "cp/pubkey"
)

// State holds the process-wide synchronized checkpoint state: the currently
// committed checkpoint and the optional pending one. It is not internally
// synchronized; the acceptance engine serializes all access under its mutex.
type State struct {
	kv  store.Store
	raw database.Database

	committed      common.Hash
	committedBlock *core.ExtendedBlock // cache of the resolved block index entry
	committedMsg   *SyncCheckpoint     // the accepted message, kept for relay

	pendingHash common.Hash
	pendingMsg  *SyncCheckpoint
}

// NewState creates a State backed by the given database and loads the
// persisted committed hash.
func NewState(db database.Database) *State {
	s := &State{
		kv:  kvstore.NewKVStore(db),
		raw: db,
	}
	s.load()
	return s
}

func (s *State) load() {
	var committed common.Hash
	err := s.kv.Get(common.Bytes(DBCheckpointHashKey), &committed)
	if err == nil {
		s.committed = committed
	}
}

// CommittedHash returns the currently enforced checkpoint hash. The zero hash
// means no checkpoint is enforced.
func (s *State) CommittedHash() common.Hash {
	return s.committed
}

// CommittedBlock returns the cached block index entry of the committed
// checkpoint, possibly nil if it has not been resolved yet.
func (s *State) CommittedBlock() *core.ExtendedBlock {
	return s.committedBlock
}

// SetCommittedBlock caches the resolved block index entry of the committed checkpoint.
func (s *State) SetCommittedBlock(block *core.ExtendedBlock) {
	s.committedBlock = block
}

// CommittedMessage returns the accepted checkpoint message, if any.
func (s *State) CommittedMessage() *SyncCheckpoint {
	return s.committedMsg
}

// PendingHash returns the pending checkpoint hash, or the zero hash.
func (s *State) PendingHash() common.Hash {
	return s.pendingHash
}

// PendingMessage returns the pending checkpoint message, if any.
func (s *State) PendingMessage() *SyncCheckpoint {
	return s.pendingMsg
}

// SetPending stores the given checkpoint as pending.
func (s *State) SetPending(hash common.Hash, msg *SyncCheckpoint) {
	s.pendingHash = hash
	s.pendingMsg = msg
}

// ClearPending discards any pending checkpoint.
func (s *State) ClearPending() {
	s.pendingHash = common.Hash{}
	s.pendingMsg = nil
}

// Commit durably writes the given checkpoint hash and then updates the
// in-memory state. If the durable write or the flush fails, the in-memory
// state is left untouched and the error is escalated: enforcement decisions
// must never rely on unflushed state.
func (s *State) Commit(hash common.Hash, block *core.ExtendedBlock, msg *SyncCheckpoint) error {
	if err := s.kv.Put(common.Bytes(DBCheckpointHashKey), hash); err != nil {
		return errors.Wrapf(err, "failed to write sync checkpoint %v", hash.Hex())
	}
	if err := s.raw.Sync(); err != nil {
		return errors.Wrapf(err, "failed to flush sync checkpoint %v", hash.Hex())
	}
	s.committed = hash
	s.committedBlock = block
	s.committedMsg = msg
	s.ClearPending()
	return nil
}

// ReadMasterPubKey returns the persisted master public key, or an empty
// string if none has been stored yet.
func (s *State) ReadMasterPubKey() string {
	var pubKey string
	err := s.kv.Get(common.Bytes(DBCheckpointPubKeyKey), &pubKey)
	if err != nil {
		return ""
	}
	return pubKey
}

// WriteMasterPubKey durably stores the master public key.
func (s *State) WriteMasterPubKey(pubKey string) error {
	if err := s.kv.Put(common.Bytes(DBCheckpointPubKeyKey), pubKey); err != nil {
		return errors.Wrap(err, "failed to write checkpoint master key")
	}
	return s.raw.Sync()
}
