package util

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cinderchain/cinder/common"
)

func init() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	log.SetFormatter(customFormatter)
	customFormatter.FullTimestamp = true
}

// InitLog applies the configured log level. Called after the config file has
// been read in, since package init runs before that.
func InitLog() {
	if viper.GetBool(common.CfgLogDebug) {
		log.SetLevel(log.DebugLevel)
		return
	}
	levels := viper.GetString(common.CfgLogLevels)
	// Format: "*:<level>". Per-prefix levels are not supported yet.
	parts := strings.Split(levels, ":")
	levelStr := parts[len(parts)-1]
	if level, err := log.ParseLevel(levelStr); err == nil {
		log.SetLevel(level)
	}
}
