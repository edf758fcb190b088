package tccfg

import (
	"fmt"
	"time"
)

const (
	// DefaultFetchTimeout is the default time a single verification waits
	// for the chain backend.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxConcurrency is the default number of bundles of a batch
	// verified in parallel.
	DefaultMaxConcurrency = 8

	minFetchTimeout = 100 * time.Millisecond
)

// Verify holds the options of the verifier.
//
//nolint:lll
type Verify struct {
	FetchTimeout   time.Duration `long:"fetchtimeout" description:"Maximum time a verification waits for the chain backend to return the transaction."`
	MaxConcurrency int           `long:"maxconcurrency" description:"Maximum number of bundles of a batch verified in parallel."`
}

// DefaultVerify returns the default verifier options.
func DefaultVerify() *Verify {
	return &Verify{
		FetchTimeout:   DefaultFetchTimeout,
		MaxConcurrency: DefaultMaxConcurrency,
	}
}

// Validate checks the verifier options.
func (v *Verify) Validate() error {
	if v.FetchTimeout < minFetchTimeout {
		return fmt.Errorf("verify.fetchtimeout: %v below minimum: %v",
			v.FetchTimeout, minFetchTimeout)
	}

	if v.MaxConcurrency <= 0 {
		return fmt.Errorf("verify.maxconcurrency must be positive, "+
			"got %d", v.MaxConcurrency)
	}

	return nil
}
