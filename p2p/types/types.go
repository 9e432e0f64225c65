package types

import (
	"github.com/cinderchain/cinder/common"
)

// Message models the message sent/received over the p2p network.
type Message struct {
	PeerID    string
	ChannelID common.ChannelIDEnum
	Content   interface{}
}
