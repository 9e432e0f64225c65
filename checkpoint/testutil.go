package checkpoint

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/blockchain"
	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/core"
	"github.com/cinderchain/cinder/crypto"
	"github.com/cinderchain/cinder/dispatcher"
	"github.com/cinderchain/cinder/p2p/simulation"
	"github.com/cinderchain/cinder/store/database/backend"
)

// testEnv bundles the moving parts of an engine test: an in-memory chain,
// checkpoint state over a reusable database, a simnet endpoint and the engine.
type testEnv struct {
	chain    *blockchain.Chain
	db       *backend.MemDatabase
	state    *State
	simnet   *simulation.Simnet
	endpoint *simulation.SimnetEndpoint
	disp     *dispatcher.Dispatcher
	engine   *Engine
	privKey  *crypto.PrivateKey
}

// newTestEnv creates an engine over a fresh chain built from the given block
// pairs. The master key pair derives from a fixed seed so the configured
// public key is stable across tests.
func newTestEnv(pairs []string) *testEnv {
	core.ResetTestBlocks()
	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed("checkpoint_master")
	if err != nil {
		panic(err)
	}
	viper.Set(common.CfgCheckpointPubKey, fmt.Sprintf("%x", pk.ToBytes()))

	env := &testEnv{
		chain:   blockchain.CreateTestChainByBlocks(pairs),
		db:      backend.NewMemDatabase(),
		simnet:  simulation.NewSimnet(),
		privKey: sk,
	}
	env.state = NewState(env.db)
	env.endpoint = env.simnet.AddEndpoint("node0")
	env.disp = dispatcher.NewDispatcher(env.endpoint)
	env.engine, err = NewEngine(env.chain, env.state, env.disp)
	if err != nil {
		panic(err)
	}
	env.endpoint.RegisterMessageHandler(env.engine)
	return env
}

// signedCheckpoint builds and signs a checkpoint message for the named test block.
func (env *testEnv) signedCheckpoint(name string) *SyncCheckpoint {
	msg, err := NewSyncCheckpoint(core.GetTestBlock(name).Hash())
	if err != nil {
		panic(err)
	}
	if err := msg.Sign(env.privKey); err != nil {
		panic(err)
	}
	return msg
}

// masterKeyHex returns the hex form of the env master private key.
func (env *testEnv) masterKeyHex() string {
	return fmt.Sprintf("%x", env.privKey.ToBytes())
}

// restart replaces the state and engine with fresh instances over the same
// database, simulating a node restart.
func (env *testEnv) restart() {
	env.state = NewState(env.db)
	eng, err := NewEngine(env.chain, env.state, env.disp)
	if err != nil {
		panic(err)
	}
	env.engine = eng
}

// addPeerEngine attaches another engine to the simnet under the given peer ID.
// The peer shares the test chain but keeps its own checkpoint state.
func (env *testEnv) addPeerEngine(id string) (*Engine, *State) {
	state := NewState(backend.NewMemDatabase())
	endpoint := env.simnet.AddEndpoint(id)
	disp := dispatcher.NewDispatcher(endpoint)
	eng, err := NewEngine(env.chain, state, disp)
	if err != nil {
		panic(err)
	}
	endpoint.RegisterMessageHandler(eng)
	return eng, state
}
