package towercheck

import (
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/towercheck/build"
	"github.com/lightningnetwork/towercheck/checkrpc"
	"github.com/lightningnetwork/towercheck/esplora"
	"github.com/lightningnetwork/towercheck/signal"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/lightningnetwork/towercheck/verifier"
)

// Subsystem is the logging code of the daemon itself.
const Subsystem = "TCHK"

// tchkLog is the logger of the daemon. It is replaced by a critical logger
// once SetupLoggers is called, so a critical error stops the daemon.
var tchkLog = build.NewSubLogger(Subsystem, nil)

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager,
	interceptor signal.Interceptor) {

	genLogger := root.GenSubLogger

	// Critical errors of the daemon request a shutdown.
	tchkLog = build.NewCriticalLogger(
		build.NewSubLogger(Subsystem, genLogger),
		interceptor.RequestShutdown,
	)

	AddSubLogger(root, signal.Subsystem, signal.UseLogger)
	AddSubLogger(root, verifier.Subsystem, verifier.UseLogger)
	AddSubLogger(root, txsource.Subsystem, txsource.UseLogger)
	AddSubLogger(root, esplora.Subsystem, esplora.UseLogger)
	AddSubLogger(root, checkrpc.Subsystem, checkrpc.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) {

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
