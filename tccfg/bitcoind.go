// Package tccfg holds the option groups of the towercheck daemon.
package tccfg

const defaultRPCHost = "localhost"

// Bitcoind holds the configuration options for the daemon's connection to
// bitcoind.
//
//nolint:lll
type Bitcoind struct {
	RPCHost string `long:"rpchost" description:"The daemon's rpc listening address. If a port is omitted, then the default port for the selected chain parameters will be used."`
	RPCUser string `long:"rpcuser" description:"Username for RPC connections"`
	RPCPass string `long:"rpcpass" default-mask:"-" description:"Password for RPC connections"`

	MaxInFlight int `long:"maxinflight" description:"Maximum number of outstanding RPCs, including those abandoned after a timeout (at most 50)."`
}

// DefaultBitcoind returns a default configuration for the bitcoind backend.
func DefaultBitcoind() *Bitcoind {
	return &Bitcoind{
		RPCHost: defaultRPCHost,
	}
}
