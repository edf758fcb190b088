package verifier

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newSignedBundle(t *testing.T) (*bundle.Bundle, *btcec.PrivateKey) {
	t.Helper()

	userKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	towerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	b, err := bundle.NewSigned(
		userKey, towerKey, bundle.DefaultFixtureParams(),
	)
	require.NoError(t, err)

	return b, towerKey
}

func checkChain(b *bundle.Bundle) (ChainReport, error) {
	return CheckReceiptChain(
		b.UserID, b.TowerID, &b.RegReceipt, &b.AppReceipt,
		&b.Appointment, b.UserSignature,
	)
}

// TestCheckReceiptChain asserts that every link of the chain is evaluated
// and reported.
func TestCheckReceiptChain(t *testing.T) {
	t.Parallel()

	b, _ := newSignedBundle(t)

	report, err := checkChain(b)
	require.NoError(t, err)
	require.Equal(t, ChainReport{
		RegReceipt: true, UserSignature: true, AppReceipt: true,
	}, report)

	// Verifying against any other tower breaks both receipts but leaves
	// the user's signature intact.
	otherKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	other := *b
	other.TowerID = identity.NewTowerID(otherKey.PubKey())

	report, err = checkChain(&other)
	require.ErrorIs(t, err, ErrReceiptVerificationFailed)
	require.Equal(t, ChainReport{UserSignature: true}, report)

	// A registration receipt issued to another user breaks the first
	// link only.
	other = *b
	other.RegReceipt.UserID = identity.NewUserID(otherKey.PubKey())
	report, err = checkChain(&other)
	require.ErrorIs(t, err, ErrReceiptVerificationFailed)
	require.False(t, report.RegReceipt)
	require.True(t, report.UserSignature)
	require.True(t, report.AppReceipt)
}

// TestCheckReceiptChainMalformed asserts that unparsable signatures win over
// mismatches and that the remaining links are still evaluated.
func TestCheckReceiptChainMalformed(t *testing.T) {
	t.Parallel()

	b, _ := newSignedBundle(t)
	b.AppReceipt.Signature = "bogus!"

	report, err := checkChain(b)
	require.ErrorIs(t, err, ErrMalformedSignature)
	require.NotErrorIs(t, err, ErrReceiptVerificationFailed)
	require.True(t, report.RegReceipt)
	require.True(t, report.UserSignature)
	require.False(t, report.AppReceipt)
}

// TestRegistrationSignedByTower asserts that a tower-signed registration
// receipt verifies against that tower and no other identity.
func TestRegistrationSignedByTower(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "seed")
		otherSeed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(
			t, "other",
		)

		towerKey, _ := btcec.PrivKeyFromBytes(seed)
		otherKey, _ := btcec.PrivKeyFromBytes(otherSeed)
		if towerKey.Key.IsZero() || otherKey.Key.IsZero() ||
			towerKey.Key.Equals(&otherKey.Key) {

			t.Skip("degenerate keys")
		}

		b, err := bundle.NewSigned(
			otherKey, towerKey, bundle.DefaultFixtureParams(),
		)
		require.NoError(t, err)

		ok, err := b.RegReceipt.Verify(
			identity.NewTowerID(towerKey.PubKey()),
		)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = b.RegReceipt.Verify(
			identity.NewTowerID(otherKey.PubKey()),
		)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

// TestCheckSubscriptionWindow asserts that exactly the start blocks of the
// closed subscription interval are accepted.
func TestCheckSubscriptionWindow(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		start := rapid.Uint32().Draw(t, "start")
		expiry := rapid.Uint32Min(start).Draw(t, "expiry")
		startBlock := rapid.Uint32().Draw(t, "startBlock")

		err := CheckSubscriptionWindow(startBlock, start, expiry)
		if startBlock >= start && startBlock <= expiry {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err,
				ErrAppointmentOutsideSubscription)
		}

		// Both bounds are inclusive.
		require.NoError(t, CheckSubscriptionWindow(start, start, expiry))
		require.NoError(t, CheckSubscriptionWindow(expiry, start, expiry))
	})
}

// TestCrossReference asserts the classification of provider errors.
func TestCrossReference(t *testing.T) {
	t.Parallel()

	b, _ := newSignedBundle(t)

	tests := []struct {
		name   string
		setup  func(m *txsource.Mock)
		expErr error
	}{
		{
			name:   "not found",
			setup:  func(m *txsource.Mock) {},
			expErr: ErrTransactionNotResponded,
		},
		{
			name: "unavailable",
			setup: func(m *txsource.Mock) {
				m.SetErr(txsource.ErrUnavailable)
			},
			expErr: ErrProviderUnavailable,
		},
		{
			name: "deadline",
			setup: func(m *txsource.Mock) {
				m.SetErr(fmt.Errorf("%w: %w",
					txsource.ErrUnavailable,
					context.DeadlineExceeded))
			},
			expErr: ErrProviderTimeout,
		},
		{
			name: "unclassified",
			setup: func(m *txsource.Mock) {
				m.SetErr(errors.New("boom"))
			},
			expErr: ErrProviderUnavailable,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m := txsource.NewMock()
			test.setup(m)

			err := CrossReference(
				context.Background(), m, &b.Appointment, 0,
			)
			require.ErrorIs(t, err, test.expErr)
		})
	}
}

// TestOutcomeFromError asserts the mapping of errors to outcomes and the
// text encoding of outcomes.
func TestOutcomeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		outcome Outcome
	}{
		{nil, OutcomeVerified},
		{ErrInvalidBundle, OutcomeInvalidBundle},
		{ErrMalformedSignature, OutcomeMalformedSignature},
		{ErrReceiptVerificationFailed, OutcomeReceiptVerificationFailed},
		{
			ErrAppointmentOutsideSubscription,
			OutcomeAppointmentOutsideSubscription,
		},
		{ErrTransactionNotResponded, OutcomeTransactionNotResponded},
		{ErrProviderUnavailable, OutcomeProviderUnavailable},
		{ErrProviderTimeout, OutcomeProviderTimeout},
		{
			fmt.Errorf("%w: %w", ErrProviderTimeout,
				ErrProviderUnavailable),
			OutcomeProviderTimeout,
		},
		{errors.New("unknown"), OutcomeReceiptVerificationFailed},
	}

	for _, test := range tests {
		require.Equal(t, test.outcome, OutcomeFromError(test.err),
			"err: %v", test.err)
	}

	for _, outcome := range AllOutcomes() {
		text, err := outcome.MarshalText()
		require.NoError(t, err)

		var decoded Outcome
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, outcome, decoded)
	}
	require.Len(t, AllOutcomes(), 8)

	var decoded Outcome
	require.Error(t, decoded.UnmarshalText([]byte("Fine")))
}
