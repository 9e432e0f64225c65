package simulation

import (
	"context"
	"sync"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/p2p"
	p2ptypes "github.com/cinderchain/cinder/p2p/types"
)

// Simnet represents an instance of a simulated network. Message delivery is
// synchronous, which keeps tests deterministic.
type Simnet struct {
	mu        sync.Mutex
	endpoints []*SimnetEndpoint
}

// NewSimnet creates a new instance of Simnet.
func NewSimnet() *Simnet {
	return &Simnet{}
}

// AddEndpoint adds an endpoint with the given ID to the Simnet instance.
func (sn *Simnet) AddEndpoint(id string) *SimnetEndpoint {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	endpoint := &SimnetEndpoint{
		id:      id,
		network: sn,
	}
	sn.endpoints = append(sn.endpoints, endpoint)
	return endpoint
}

func (sn *Simnet) deliver(from, to string, message p2ptypes.Message) bool {
	sn.mu.Lock()
	endpoints := append([]*SimnetEndpoint{}, sn.endpoints...)
	sn.mu.Unlock()

	delivered := false
	for _, endpoint := range endpoints {
		if endpoint.ID() == from {
			continue
		}
		if to != "" && endpoint.ID() != to {
			continue
		}
		message.PeerID = from
		endpoint.handleMessage(message)
		delivered = true
	}
	return delivered
}

// SimnetEndpoint is the implementation of the Network interface for Simnet.
type SimnetEndpoint struct {
	id       string
	network  *Simnet
	handlers []p2p.MessageHandler
}

var _ p2p.Network = (*SimnetEndpoint)(nil)

// Start implements the Network interface.
func (se *SimnetEndpoint) Start(ctx context.Context) error {
	return nil
}

// Wait implements the Network interface.
func (se *SimnetEndpoint) Wait() {}

// Stop implements the Network interface.
func (se *SimnetEndpoint) Stop() {}

// Broadcast implements the Network interface.
func (se *SimnetEndpoint) Broadcast(message p2ptypes.Message) error {
	se.network.deliver(se.id, "", message)
	return nil
}

// Send implements the Network interface.
func (se *SimnetEndpoint) Send(peerID string, message p2ptypes.Message) bool {
	return se.network.deliver(se.id, peerID, message)
}

// Peers implements the Network interface.
func (se *SimnetEndpoint) Peers() []string {
	se.network.mu.Lock()
	defer se.network.mu.Unlock()
	ret := []string{}
	for _, endpoint := range se.network.endpoints {
		if endpoint.ID() != se.id {
			ret = append(ret, endpoint.ID())
		}
	}
	return ret
}

// PeerSupports implements the Network interface. All simnet endpoints that
// registered a handler for the channel support it.
func (se *SimnetEndpoint) PeerSupports(peerID string, channelID common.ChannelIDEnum) bool {
	se.network.mu.Lock()
	defer se.network.mu.Unlock()
	for _, endpoint := range se.network.endpoints {
		if endpoint.ID() != peerID {
			continue
		}
		for _, handler := range endpoint.handlers {
			for _, cid := range handler.GetChannelIDs() {
				if cid == channelID {
					return true
				}
			}
		}
	}
	return false
}

// RegisterMessageHandler implements the Network interface.
func (se *SimnetEndpoint) RegisterMessageHandler(handler p2p.MessageHandler) {
	se.network.mu.Lock()
	defer se.network.mu.Unlock()
	se.handlers = append(se.handlers, handler)
}

// ID implements the Network interface.
func (se *SimnetEndpoint) ID() string {
	return se.id
}

func (se *SimnetEndpoint) handleMessage(message p2ptypes.Message) {
	se.network.mu.Lock()
	handlers := append([]p2p.MessageHandler{}, se.handlers...)
	se.network.mu.Unlock()

	for _, handler := range handlers {
		for _, cid := range handler.GetChannelIDs() {
			if cid == message.ChannelID {
				handler.HandleMessage(message)
			}
		}
	}
}
