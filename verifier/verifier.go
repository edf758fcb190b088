package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/txsource"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFetchTimeout bounds the time spent waiting for the chain
	// backend during a single verification.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxConcurrency is the default number of bundles of a batch
	// that are verified at the same time.
	DefaultMaxConcurrency = 8
)

// Observer is notified of the result of every verification.
type Observer interface {
	// Observe is called once per verification with its final result.
	// It must be safe for concurrent use.
	Observe(res *Result)
}

// Config holds the dependencies of a Verifier.
type Config struct {
	// Source is the chain backend used to cross-reference appointments.
	Source txsource.Source

	// FetchTimeout bounds each transaction lookup. Defaults to
	// DefaultFetchTimeout.
	FetchTimeout time.Duration

	// MaxConcurrency bounds the number of concurrent verifications of a
	// batch. Defaults to DefaultMaxConcurrency.
	MaxConcurrency int

	// Clock is used to time verifications. Defaults to the system clock.
	Clock clock.Clock

	// Observer, if set, receives every result.
	Observer Observer
}

// Result is the outcome of verifying a single bundle.
type Result struct {
	// State is StateVerified or StateFailed.
	State State

	// FailedAt is the last state reached before the verification failed.
	FailedAt State

	// Outcome is the verdict.
	Outcome Outcome

	// Err carries the details of a failed verification. It is nil iff
	// Outcome is OutcomeVerified.
	Err error

	// Chain reports each link of the receipt chain.
	Chain ChainReport

	// Duration is the time the verification took.
	Duration time.Duration
}

// Verified returns true if the tower honoured the appointment.
func (r *Result) Verified() bool {
	return r.State == StateVerified
}

// Verifier decides whether a tower honoured an appointment. It keeps no state
// between verifications and is safe for concurrent use.
type Verifier struct {
	cfg Config
}

// New creates a verifier from cfg, filling in defaults.
func New(cfg *Config) (*Verifier, error) {
	if cfg.Source == nil {
		return nil, errors.New("verifier requires a chain source")
	}

	c := *cfg
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.Clock == nil {
		c.Clock = clock.NewDefaultClock()
	}

	return &Verifier{cfg: c}, nil
}

// Verify runs the receipt chain, subscription window and chain
// cross-reference checks on b, in that order. The first failing check ends
// the verification. Failures are reported through the result, never as a
// panic or process error.
func (v *Verifier) Verify(ctx context.Context, b *bundle.Bundle) *Result {
	start := v.cfg.Clock.Now()
	res := &Result{State: StateStart}

	defer func() {
		res.Duration = v.cfg.Clock.Now().Sub(start)
		if v.cfg.Observer != nil {
			v.cfg.Observer.Observe(res)
		}
	}()

	if err := v.verify(ctx, b, res); err != nil {
		res.FailedAt = res.State
		res.State = StateFailed
		res.Outcome = OutcomeFromError(err)
		res.Err = err

		log.Infof("Verification failed after %v: %v", res.FailedAt,
			err)

		return res
	}

	res.State = StateVerified
	res.Outcome = OutcomeVerified

	log.Infof("Verified appointment %v of tower %v",
		b.Appointment.Locator, b.TowerID)

	return res
}

// verify advances res through the states and returns the error of the first
// failing check.
func (v *Verifier) verify(ctx context.Context, b *bundle.Bundle,
	res *Result) error {

	if b == nil {
		return ErrInvalidBundle
	}
	if err := b.Validate(); err != nil {
		return err
	}

	log.Tracef("Verifying bundle: %v", newLogClosure(func() string {
		return spew.Sdump(b)
	}))

	report, err := CheckReceiptChain(
		b.UserID, b.TowerID, &b.RegReceipt, &b.AppReceipt,
		&b.Appointment, b.UserSignature,
	)
	res.Chain = report
	if err != nil {
		return err
	}
	res.State = StateChainValidated

	err = CheckSubscriptionWindow(
		b.AppReceipt.StartBlock, b.RegReceipt.SubscriptionStart,
		b.RegReceipt.SubscriptionExpiry,
	)
	if err != nil {
		return err
	}
	res.State = StateWindowChecked

	err = CrossReference(
		ctx, v.cfg.Source, &b.Appointment, v.cfg.FetchTimeout,
	)
	if err != nil {
		return err
	}
	res.State = StateChainCrossReferenced

	return nil
}

// VerifyBatch verifies independent bundles concurrently, at most
// MaxConcurrency at a time. The i-th result belongs to the i-th bundle.
func (v *Verifier) VerifyBatch(ctx context.Context,
	bundles []*bundle.Bundle) []*Result {

	results := make([]*Result, len(bundles))

	var g errgroup.Group
	g.SetLimit(v.cfg.MaxConcurrency)
	for i, b := range bundles {
		g.Go(func() error {
			results[i] = v.Verify(ctx, b)
			return nil
		})
	}

	// The closures never fail.
	_ = g.Wait()

	return results
}
