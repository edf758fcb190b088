package verifier

import (
	"errors"

	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/msgsig"
)

var (
	// ErrMalformedSignature is returned when one of the signatures of a
	// bundle cannot be decoded.
	ErrMalformedSignature = msgsig.ErrMalformedSignature

	// ErrReceiptVerificationFailed is returned when a signature was made
	// by someone other than the expected party, or when the broadcast
	// transaction differs from the one the user handed to the tower.
	ErrReceiptVerificationFailed = errors.New("receipt verification " +
		"failed")

	// ErrAppointmentOutsideSubscription is returned when the tower
	// accepted an appointment starting outside the paid subscription.
	ErrAppointmentOutsideSubscription = errors.New("appointment outside " +
		"subscription")

	// ErrTransactionNotResponded is returned when the chain backend does
	// not know the transaction the tower should have broadcast.
	ErrTransactionNotResponded = errors.New("transaction not responded")

	// ErrProviderUnavailable is returned when the chain backend could not
	// be queried.
	ErrProviderUnavailable = errors.New("chain provider unavailable")

	// ErrProviderTimeout is returned when the chain backend did not answer
	// within the fetch timeout.
	ErrProviderTimeout = errors.New("chain provider timed out")

	// ErrInvalidBundle is returned for bundles that are structurally
	// incomplete.
	ErrInvalidBundle = bundle.ErrInvalidBundle
)
