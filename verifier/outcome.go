package verifier

import (
	"errors"
	"fmt"
)

// Outcome is the verdict of a verification.
type Outcome uint8

const (
	// OutcomeVerified means the tower honoured the appointment.
	OutcomeVerified Outcome = iota

	// OutcomeMalformedSignature means a signature could not be parsed.
	OutcomeMalformedSignature

	// OutcomeReceiptVerificationFailed means the receipt chain is broken
	// or the broadcast transaction is not the expected one.
	OutcomeReceiptVerificationFailed

	// OutcomeAppointmentOutsideSubscription means the appointment starts
	// outside the subscription window.
	OutcomeAppointmentOutsideSubscription

	// OutcomeTransactionNotResponded means the expected transaction is
	// not known to the chain backend.
	OutcomeTransactionNotResponded

	// OutcomeProviderUnavailable means the chain backend failed.
	OutcomeProviderUnavailable

	// OutcomeProviderTimeout means the chain backend did not answer in
	// time.
	OutcomeProviderTimeout

	// OutcomeInvalidBundle means the bundle is incomplete.
	OutcomeInvalidBundle
)

// outcomeNames holds the wire name of every outcome.
var outcomeNames = map[Outcome]string{
	OutcomeVerified:                       "Verified",
	OutcomeMalformedSignature:             "MalformedSignature",
	OutcomeReceiptVerificationFailed:      "ReceiptVerificationFailed",
	OutcomeAppointmentOutsideSubscription: "AppointmentOutsideSubscription",
	OutcomeTransactionNotResponded:        "TransactionNotResponded",
	OutcomeProviderUnavailable:            "ProviderUnavailable",
	OutcomeProviderTimeout:                "ProviderTimeout",
	OutcomeInvalidBundle:                  "InvalidBundle",
}

// String returns the name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}

	return fmt.Errorf("unknown outcome %q", text)
}

// AllOutcomes returns every outcome in declaration order.
func AllOutcomes() []Outcome {
	outcomes := make([]Outcome, 0, len(outcomeNames))
	for o := OutcomeVerified; o <= OutcomeInvalidBundle; o++ {
		outcomes = append(outcomes, o)
	}

	return outcomes
}

// OutcomeFromError classifies the error returned by a verification step. A
// nil error is OutcomeVerified. Errors outside the taxonomy count as a
// failed receipt verification.
func OutcomeFromError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeVerified

	case errors.Is(err, ErrInvalidBundle):
		return OutcomeInvalidBundle

	case errors.Is(err, ErrMalformedSignature):
		return OutcomeMalformedSignature

	case errors.Is(err, ErrAppointmentOutsideSubscription):
		return OutcomeAppointmentOutsideSubscription

	case errors.Is(err, ErrTransactionNotResponded):
		return OutcomeTransactionNotResponded

	case errors.Is(err, ErrProviderTimeout):
		return OutcomeProviderTimeout

	case errors.Is(err, ErrProviderUnavailable):
		return OutcomeProviderUnavailable

	default:
		return OutcomeReceiptVerificationFailed
	}
}
