package common

// ChannelIDEnum identifies the logical p2p channel a message belongs to.
type ChannelIDEnum byte

const (
	// ChannelIDInvalid is the invalid channel ID
	ChannelIDInvalid ChannelIDEnum = 0

	// ChannelIDBlock is the channel for block propagation
	ChannelIDBlock ChannelIDEnum = 2

	// ChannelIDCheckpoint is the channel for synchronized checkpoint messages
	ChannelIDCheckpoint ChannelIDEnum = 5

	// ChannelIDPeerDiscovery is the channel for peer discovery
	ChannelIDPeerDiscovery ChannelIDEnum = 9
)
