// Package chainreg builds the chain backend selected by the configuration.
package chainreg

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/towercheck/esplora"
	"github.com/lightningnetwork/towercheck/tccfg"
	"github.com/lightningnetwork/towercheck/txsource"
)

const (
	// BitcoindBackendName is the name of the bitcoind chain backend.
	BitcoindBackendName = "bitcoind"

	// EsploraBackendName is the name of the Esplora chain backend.
	EsploraBackendName = "esplora"
)

// Config selects and parameterizes a chain backend.
type Config struct {
	// Backend is BitcoindBackendName or EsploraBackendName.
	Backend string

	// Bitcoind is used by the bitcoind backend.
	Bitcoind *tccfg.Bitcoind

	// Esplora is used by the Esplora backend.
	Esplora *tccfg.Esplora

	// NetParams is the network the backend runs on.
	NetParams *chaincfg.Params
}

// NewSource connects to the configured backend. The returned closure
// releases the backend's resources.
func NewSource(cfg *Config) (txsource.Source, func(), error) {
	switch cfg.Backend {
	case BitcoindBackendName:
		bitcoind, err := txsource.NewBitcoind(&txsource.BitcoindConfig{
			RPCHost:     cfg.Bitcoind.RPCHost,
			RPCUser:     cfg.Bitcoind.RPCUser,
			RPCPass:     cfg.Bitcoind.RPCPass,
			NetParams:   cfg.NetParams,
			MaxInFlight: cfg.Bitcoind.MaxInFlight,
		})
		if err != nil {
			return nil, nil, err
		}

		return bitcoind, bitcoind.Stop, nil

	case EsploraBackendName:
		if err := cfg.Esplora.Validate(); err != nil {
			return nil, nil, err
		}

		var source txsource.Source = esplora.NewClient(
			&esplora.ClientConfig{
				URL:            cfg.Esplora.URL,
				RequestTimeout: cfg.Esplora.RequestTimeout,
				MaxRetries:     cfg.Esplora.MaxRetries,
			},
		)

		if limit := cfg.Esplora.RateLimit; limit > 0 {
			source = txsource.NewRateLimited(
				source, limit, rateLimitBurst(limit),
			)
		}

		return source, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown chain backend %q",
			cfg.Backend)
	}
}

// rateLimitBurst allows one second worth of requests at once, and at least
// a single one.
func rateLimitBurst(limit float64) int {
	return int(math.Max(1, math.Ceil(limit)))
}
