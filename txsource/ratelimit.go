package txsource

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/time/rate"
)

// RateLimited wraps a Source so that it is queried at most at a fixed rate.
// Public Esplora instances throttle aggressive clients, this keeps bursts of
// verifications below their limits.
type RateLimited struct {
	Source

	limiter *rate.Limiter
}

// A compile time check to ensure RateLimited implements the Pinger
// interface.
var _ Pinger = (*RateLimited)(nil)

// NewRateLimited wraps src with a limiter allowing limit requests per second
// and bursts of up to burst requests.
func NewRateLimited(src Source, limit float64, burst int) *RateLimited {
	return &RateLimited{
		Source:  src,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// FetchTransaction waits for the limiter before querying the wrapped source.
//
// NOTE: This is part of the Source interface.
func (r *RateLimited) FetchTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	if err := r.limiter.Wait(ctx); err != nil {
		_, hasDeadline := ctx.Deadline()
		switch {
		case ctx.Err() != nil:
			err = ctx.Err()

		// Wait fails early if the next token would only be available
		// after the deadline.
		case hasDeadline:
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}

		return nil, fmt.Errorf("%w: rate limited: %w", ErrUnavailable,
			err)
	}

	return r.Source.FetchTransaction(ctx, txid)
}

// Ping forwards to the wrapped source if it supports pinging.
//
// NOTE: This is part of the Pinger interface.
func (r *RateLimited) Ping(ctx context.Context) error {
	pinger, ok := r.Source.(Pinger)
	if !ok {
		return nil
	}

	return pinger.Ping(ctx)
}
