package tccfg

import "errors"

// Chain holds the network selector of the daemon.
//
//nolint:lll
type Chain struct {
	MainNet  bool `long:"mainnet" description:"Use the main network"`
	TestNet3 bool `long:"testnet" description:"Use the test network"`
	RegTest  bool `long:"regtest" description:"Use the regression test network"`
	SimNet   bool `long:"simnet" description:"Use the simulation test network"`
	SigNet   bool `long:"signet" description:"Use the signet test network"`
}

// Validate checks that at most one network is selected. Selecting none
// means mainnet.
func (c *Chain) Validate() error {
	count := 0
	for _, selected := range []bool{
		c.MainNet, c.TestNet3, c.RegTest, c.SimNet, c.SigNet,
	} {
		if selected {
			count++
		}
	}

	if count > 1 {
		return errors.New("the mainnet, testnet, regtest, simnet and " +
			"signet params can't be used together -- choose one " +
			"of the five")
	}

	return nil
}
