package p2p

import (
	"context"

	"github.com/cinderchain/cinder/common"
	p2ptypes "github.com/cinderchain/cinder/p2p/types"
)

//
// MessageHandler interface
//
type MessageHandler interface {

	// GetChannelIDs returns the list of channelIDs that the message handler handles
	GetChannelIDs() []common.ChannelIDEnum

	// ParseMessage parses the raw message bytes received from the peer with peerID
	ParseMessage(peerID string, channelID common.ChannelIDEnum, rawMessageBytes common.Bytes) (p2ptypes.Message, error)

	// HandleMessage handles the message received from the peer with peerID
	HandleMessage(message p2ptypes.Message) error
}

//
// Network is a handle to the P2P network
//
type Network interface {

	// Start kicks off the network
	Start(ctx context.Context) error

	// Wait blocks until the network stops
	Wait()

	// Stop stops the network
	Stop()

	// Broadcast broadcasts the given message to all the neighboring peers
	Broadcast(message p2ptypes.Message) error

	// Send sends the given message to the peer specified by the peerID
	Send(peerID string, message p2ptypes.Message) bool

	// Peers returns the IDs of all connected peers
	Peers() []string

	// PeerSupports indicates whether the given peer handles messages on the given channel
	PeerSupports(peerID string, channelID common.ChannelIDEnum) bool

	// RegisterMessageHandler registers the message handler
	RegisterMessageHandler(messageHandler MessageHandler)

	// ID returns the ID of the network peer
	ID() string
}
