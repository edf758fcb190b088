package towercheck

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/towercheck/tccfg"
)

// activeNetParams returns the parameters of the network selected in c,
// mainnet if none is.
func activeNetParams(c *tccfg.Chain) *chaincfg.Params {
	switch {
	case c.TestNet3:
		return &chaincfg.TestNet3Params

	case c.RegTest:
		return &chaincfg.RegressionNetParams

	case c.SimNet:
		return &chaincfg.SimNetParams

	case c.SigNet:
		return &chaincfg.SigNetParams

	default:
		return &chaincfg.MainNetParams
	}
}

// normalizeNetwork returns the common name of a network type used to create
// file paths. This allows differently versioned networks to use the same
// path.
func normalizeNetwork(network string) string {
	if network == chaincfg.TestNet3Params.Name {
		return "testnet"
	}

	return network
}
