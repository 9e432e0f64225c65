package node

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/checkpoint"
	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/core"
	dp "github.com/cinderchain/cinder/dispatcher"
	"github.com/cinderchain/cinder/p2p"
	"github.com/cinderchain/cinder/store"
	"github.com/cinderchain/cinder/store/database"
	"github.com/cinderchain/cinder/store/database/backend"
	"github.com/cinderchain/cinder/store/kvstore"
)

// Node wires the chain, the checkpoint engine and the relay layer together.
type Node struct {
	Store      store.Store
	Chain      *blockchain.Chain
	Checkpoint *checkpoint.Engine
	Dispatcher *dp.Dispatcher
	Network    p2p.Network

	// Life cycle
	ctx    context.Context
	cancel context.CancelFunc
}

type Params struct {
	ChainID string
	Root    *core.Block
	Network p2p.Network
	DB      database.Database
}

// NewNode assembles a node from the given parameters.
func NewNode(params *Params) (*Node, error) {
	store := kvstore.NewKVStore(params.DB)
	chain := blockchain.NewChain(params.ChainID, store, params.Root)
	dispatcher := dp.NewDispatcher(params.Network)

	state := checkpoint.NewState(params.DB)
	engine, err := checkpoint.NewEngine(chain, state, dispatcher)
	if err != nil {
		return nil, err
	}
	params.Network.RegisterMessageHandler(engine)

	if masterKey := viper.GetString(common.CfgCheckpointKey); masterKey != "" {
		if err := engine.SetMasterPrivKey(masterKey); err != nil {
			return nil, err
		}
	}

	return &Node{
		Store:      store,
		Chain:      chain,
		Checkpoint: engine,
		Dispatcher: dispatcher,
		Network:    params.Network,
	}, nil
}

// OpenDatabase opens the configured storage backend under the given data path.
func OpenDatabase(dataPath string) (database.Database, error) {
	switch strings.ToLower(viper.GetString(common.CfgStorageBackend)) {
	case "leveldb":
		return backend.NewLDBDatabase(
			path.Join(dataPath, "db"),
			viper.GetInt(common.CfgStorageLevelDBCache),
			viper.GetInt(common.CfgStorageLevelDBHandles))
	case "badger":
		return backend.NewBadgerDatabase(path.Join(dataPath, "db"))
	case "memory":
		return backend.NewMemDatabase(), nil
	default:
		return nil, errors.Errorf("unknown storage backend: %v", viper.GetString(common.CfgStorageBackend))
	}
}

// Start starts sub components and kicks off the engine main loop.
func (n *Node) Start(ctx context.Context) error {
	c, cancel := context.WithCancel(ctx)
	n.ctx = c
	n.cancel = cancel

	if err := n.Dispatcher.Start(n.ctx); err != nil {
		return err
	}
	return n.Checkpoint.Start(n.ctx)
}

// Stop notifies all sub components to stop without blocking.
func (n *Node) Stop() {
	n.cancel()
	n.Checkpoint.Stop()
	n.Dispatcher.Stop()
}

// Wait blocks until all sub components stop.
func (n *Node) Wait() {
	n.Checkpoint.Wait()
	n.Dispatcher.Wait()
}
