package cmd

import (
	"context"
	"math/big"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/common"
	"github.com/cinderchain/cinder/core"
	"github.com/cinderchain/cinder/node"
	"github.com/cinderchain/cinder/p2p/simulation"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start Cinder node.",
	Run:   runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) {
	db, err := node.OpenDatabase(getDataPath())
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to open the database")
	}

	root := core.NewBlock()
	root.ChainID = viper.GetString(common.CfgChainID)
	root.StateHash = common.HexToHash(viper.GetString(common.CfgGenesisHash))
	root.Timestamp = big.NewInt(0)

	// In-process network endpoint. Real socket transport plugs in behind the
	// p2p.Network interface.
	network := simulation.NewSimnet().AddEndpoint(viper.GetString(common.CfgP2PName))

	n, err := node.NewNode(&node.Params{
		ChainID: root.ChainID,
		Root:    root,
		Network: network,
		DB:      db,
	})
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to create the node")
	}
	if err := n.Start(context.Background()); err != nil {
		log.WithFields(log.Fields{"err": err}).Fatal("Failed to start the node")
	}

	n.Wait()
}
