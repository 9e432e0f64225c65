package dispatcher

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/p2p"
	p2ptypes "github.com/cinderchain/cinder/p2p/types"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "dispatcher"})

const maxPeerRelayRecords = 4096

//
// Dispatcher dispatches messages to appropriate destinations. It owns the
// per-peer relay records used to suppress redundant checkpoint relays.
//
type Dispatcher struct {
	p2pnet p2p.Network

	// peerID -> last checkpoint hash relayed to/known by that peer. Purely a
	// relay-traffic optimization, never correctness-affecting.
	checkpointKnown *lru.Cache
}

// NewDispatcher returns the pointer to a new Dispatcher instance.
func NewDispatcher(p2pnet p2p.Network) *Dispatcher {
	known, err := lru.New(maxPeerRelayRecords)
	if err != nil {
		logger.Panic(err)
	}
	return &Dispatcher{
		p2pnet:          p2pnet,
		checkpointKnown: known,
	}
}

// Start is called when the dispatcher starts.
func (dp *Dispatcher) Start(ctx context.Context) error {
	return dp.p2pnet.Start(ctx)
}

// Stop is called when the dispatcher stops.
func (dp *Dispatcher) Stop() {
	dp.p2pnet.Stop()
}

// Wait suspends the caller goroutine.
func (dp *Dispatcher) Wait() {
	dp.p2pnet.Wait()
}

// ID returns the ID of the node.
func (dp *Dispatcher) ID() string {
	return dp.p2pnet.ID()
}

// PeerCount returns the number of connected peers.
func (dp *Dispatcher) PeerCount() int {
	return len(dp.p2pnet.Peers())
}

// RecordCheckpointKnown records that the given peer already knows the given
// checkpoint hash (e.g. because the peer sent it to us).
func (dp *Dispatcher) RecordCheckpointKnown(peerID string, hash common.Hash) {
	dp.checkpointKnown.Add(peerID, hash)
}

// RelayCheckpoint relays the checkpoint content to every connected peer that
// supports the checkpoint channel, skipping peers whose last known checkpoint
// hash equals the given one.
func (dp *Dispatcher) RelayCheckpoint(hash common.Hash, content interface{}) {
	for _, peerID := range dp.p2pnet.Peers() {
		dp.relayCheckpointTo(peerID, hash, content)
	}
}

// RelayCheckpointTo relays the checkpoint content to a single peer, applying
// the same per-peer suppression rules as RelayCheckpoint.
func (dp *Dispatcher) RelayCheckpointTo(peerID string, hash common.Hash, content interface{}) {
	dp.relayCheckpointTo(peerID, hash, content)
}

// relayCheckpointTo applies the per-peer relay rules for a single peer.
func (dp *Dispatcher) relayCheckpointTo(peerID string, hash common.Hash, content interface{}) {
	if !dp.p2pnet.PeerSupports(peerID, common.ChannelIDCheckpoint) {
		return
	}
	if known, ok := dp.checkpointKnown.Get(peerID); ok {
		if knownHash, ok := known.(common.Hash); ok && knownHash == hash {
			return
		}
	}
	dp.checkpointKnown.Add(peerID, hash)

	message := p2ptypes.Message{
		ChannelID: common.ChannelIDCheckpoint,
		Content:   content,
	}
	if ok := dp.p2pnet.Send(peerID, message); !ok {
		logger.Debugf("Failed to relay checkpoint %v to peer %v", hash.Hex(), peerID)
	}
}
