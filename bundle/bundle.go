package bundle

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/towercheck/identity"
	"github.com/lightningnetwork/towercheck/receipts"
)

var (
	// ErrInvalidBundle is returned when a bundle is structurally unfit
	// for verification.
	ErrInvalidBundle = errors.New("invalid verification bundle")
)

// Bundle carries every artifact needed to audit a tower's handling of a
// single appointment.
type Bundle struct {
	// UserID is the identity of the client that sent the appointment.
	UserID identity.UserID `json:"user_id"`

	// TowerID is the identity of the audited tower.
	TowerID identity.TowerID `json:"tower_id"`

	// RegReceipt is the tower's registration receipt for the user.
	RegReceipt receipts.RegistrationReceipt `json:"reg_receipt"`

	// AppReceipt is the tower's receipt for the appointment.
	AppReceipt receipts.AppointmentReceipt `json:"app_receipt"`

	// Appointment is the appointment sent by the user.
	Appointment receipts.Appointment `json:"appointment"`

	// UserSignature is the user's signature over Appointment.
	UserSignature string `json:"user_signature"`
}

// Validate checks that all mandatory fields of the bundle are populated and
// that the registration receipt is well formed. It performs no signature
// checks.
func (b *Bundle) Validate() error {
	switch {
	case b.UserID == identity.UserID{}:
		return fmt.Errorf("%w: missing user_id", ErrInvalidBundle)

	case b.TowerID == identity.TowerID{}:
		return fmt.Errorf("%w: missing tower_id", ErrInvalidBundle)

	case len(b.Appointment.EncryptedBlob) == 0:
		return fmt.Errorf("%w: missing encrypted_blob",
			ErrInvalidBundle)
	}

	if err := b.RegReceipt.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	return nil
}
