package common

import (
	"github.com/spf13/viper"
)

const (
	// CfgConfigPath defines custom config path
	CfgConfigPath = "config.path"
	// CfgDataPath defines custom DB path
	CfgDataPath = "data.path"

	// CfgChainID defines the ID of the chain
	CfgChainID = "chain.id"
	// CfgGenesisHash defines the hash of the genesis block
	CfgGenesisHash = "genesis.hash"

	// CfgCheckpointDepth defines how many blocks an auto-selected checkpoint lags behind the tip.
	CfgCheckpointDepth = "checkpoint.depth"
	// CfgCheckpointKey holds the checkpoint master private key. Setting it turns the node
	// into the checkpoint master. The key is never persisted.
	CfgCheckpointKey = "checkpoint.key"
	// CfgCheckpointPubKey defines the network's checkpoint master public key.
	CfgCheckpointPubKey = "checkpoint.pubKey"
	// CfgCheckpointAutoIssue decides whether the master issues checkpoints automatically.
	CfgCheckpointAutoIssue = "checkpoint.autoIssue"
	// CfgCheckpointAutoIssueInterval defines the automatic issuance period in seconds.
	CfgCheckpointAutoIssueInterval = "checkpoint.autoIssueInterval"
	// CfgCheckpointRetryInterval defines the pending checkpoint retry period in seconds.
	CfgCheckpointRetryInterval = "checkpoint.retryInterval"
	// CfgCheckpointMessageQueueSize defines the capacity of the checkpoint message queue.
	CfgCheckpointMessageQueueSize = "checkpoint.messageQueueSize"

	// CfgStorageBackend selects the database backend (leveldb | badger | memory).
	CfgStorageBackend = "storage.backend"
	// CfgStorageLevelDBCache sets the leveldb cache size (MB).
	CfgStorageLevelDBCache = "storage.leveldbCache"
	// CfgStorageLevelDBHandles sets the leveldb open file limit.
	CfgStorageLevelDBHandles = "storage.leveldbHandles"

	// CfgP2PName sets the ID of local node in P2P network.
	CfgP2PName = "p2p.name"
	// CfgP2PPort sets the port used by P2P network.
	CfgP2PPort = "p2p.port"
	// CfgP2PSeeds sets the bootstrap peers.
	CfgP2PSeeds = "p2p.seeds"
	// CfgP2PMessageQueueSize sets the message queue size for network interface.
	CfgP2PMessageQueueSize = "p2p.messageQueueSize"

	// CfgLogLevels sets the log level.
	CfgLogLevels = "log.levels"
	// CfgLogDebug enables debug logging.
	CfgLogDebug = "log.debug"
)

// MinimumCheckpointDepth is the smallest depth the auto checkpoint policy allows.
// A depth of 5 offers the greatest protection against 51% attack.
const MinimumCheckpointDepth = 5

// InitialConfig is the default configuration produced by the init command.
const InitialConfig = `# Cinder configuration
p2p:
  port: 5000
  seeds: 127.0.0.1:6000,127.0.0.1:7000
checkpoint:
  depth: 5
`

func init() {
	viper.SetDefault(CfgChainID, "cinder_mainnet")

	viper.SetDefault(CfgCheckpointDepth, MinimumCheckpointDepth)
	viper.SetDefault(CfgCheckpointKey, "")
	viper.SetDefault(CfgCheckpointPubKey, "")
	viper.SetDefault(CfgCheckpointAutoIssue, false)
	viper.SetDefault(CfgCheckpointAutoIssueInterval, 60)
	viper.SetDefault(CfgCheckpointRetryInterval, 15)
	viper.SetDefault(CfgCheckpointMessageQueueSize, 512)

	viper.SetDefault(CfgStorageBackend, "leveldb")
	viper.SetDefault(CfgStorageLevelDBCache, 256)
	viper.SetDefault(CfgStorageLevelDBHandles, 16)

	viper.SetDefault(CfgP2PMessageQueueSize, 512)
	viper.SetDefault(CfgP2PName, "Anonymous")
	viper.SetDefault(CfgP2PPort, 50001)
	viper.SetDefault(CfgP2PSeeds, "")

	viper.SetDefault(CfgLogLevels, "*:debug")
	viper.SetDefault(CfgLogDebug, false)
}

// WriteInitialConfig writes initial config file to file system.
func WriteInitialConfig(filePath string) error {
	return WriteFileAtomic(filePath, []byte(InitialConfig), 0600)
}
