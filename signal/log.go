package signal

import (
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/towercheck/build"
)

// Subsystem is the logging code of the signal package.
const Subsystem = "SGNL"

// log is silent until the daemon calls UseLogger.
var log btclog.Logger

func init() {
	UseLogger(build.NewSubLogger(Subsystem, nil))
}

// DisableLog silences the package.
func DisableLog() {
	UseLogger(btclog.Disabled)
}

// UseLogger sets the logger of the package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
