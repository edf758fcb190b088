package receipts

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/lightningnetwork/towercheck/msgsig"
)

// BlockHeight is the height of a block in the chain.
type BlockHeight = uint32

var (
	// ErrInvalidSubscription is returned when a registration receipt's
	// subscription would end before it starts.
	ErrInvalidSubscription = errors.New("subscription start is after " +
		"subscription expiry")

	// ErrUnsigned is returned when verifying a receipt that carries no
	// signature. An absent signature is treated as a malformed one.
	ErrUnsigned = fmt.Errorf("%w: receipt is not signed",
		msgsig.ErrMalformedSignature)
)

// RegistrationReceipt is issued by a tower when a user registers, proving the
// subscription window that was paid for.
type RegistrationReceipt struct {
	// UserID is the user the subscription belongs to.
	UserID identity.UserID `json:"user_id"`

	// AvailableSlots is the number of appointments the user may send.
	AvailableSlots uint32 `json:"available_slots"`

	// SubscriptionStart is the first block covered by the subscription.
	SubscriptionStart BlockHeight `json:"subscription_start"`

	// SubscriptionExpiry is the last block covered by the subscription.
	SubscriptionExpiry BlockHeight `json:"subscription_expiry"`

	// Signature is the tower's signature over DataToSign.
	Signature string `json:"signature,omitempty"`
}

// NewRegistrationReceipt creates an unsigned registration receipt.
func NewRegistrationReceipt(userID identity.UserID, slots uint32, start,
	expiry BlockHeight) (*RegistrationReceipt, error) {

	r := &RegistrationReceipt{
		UserID:             userID,
		AvailableSlots:     slots,
		SubscriptionStart:  start,
		SubscriptionExpiry: expiry,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks that the subscription window is well formed.
func (r *RegistrationReceipt) Validate() error {
	if r.SubscriptionStart > r.SubscriptionExpiry {
		return fmt.Errorf("%w: start=%d, expiry=%d",
			ErrInvalidSubscription, r.SubscriptionStart,
			r.SubscriptionExpiry)
	}

	return nil
}

// DataToSign returns the canonical encoding signed by the tower:
// user_id || available_slots || subscription_start || subscription_expiry.
func (r *RegistrationReceipt) DataToSign() []byte {
	b := make([]byte, 0, identity.PubKeySize+12)
	b = append(b, r.UserID[:]...)
	b = binary.BigEndian.AppendUint32(b, r.AvailableSlots)
	b = binary.BigEndian.AppendUint32(b, r.SubscriptionStart)
	b = binary.BigEndian.AppendUint32(b, r.SubscriptionExpiry)

	return b
}

// Sign signs the receipt with the tower's key.
func (r *RegistrationReceipt) Sign(key *btcec.PrivateKey) error {
	sig, err := msgsig.Sign(r.DataToSign(), key)
	if err != nil {
		return err
	}

	r.Signature = sig

	return nil
}

// Verify reports whether the receipt was signed by towerID.
func (r *RegistrationReceipt) Verify(towerID identity.TowerID) (bool, error) {
	if r.Signature == "" {
		return false, ErrUnsigned
	}

	return msgsig.VerifyIdentity(r.DataToSign(), r.Signature, towerID)
}

// AppointmentReceipt is issued by a tower when it accepts an appointment. It
// embeds the user's signature over the appointment, binding the receipt to
// that exact appointment.
type AppointmentReceipt struct {
	// UserSignature is the user's signature over the appointment.
	UserSignature string `json:"user_signature"`

	// StartBlock is the height at which the tower started watching for
	// the breach.
	StartBlock BlockHeight `json:"start_block"`

	// Signature is the tower's signature over DataToSign.
	Signature string `json:"signature,omitempty"`
}

// NewAppointmentReceipt creates an unsigned appointment receipt.
func NewAppointmentReceipt(userSig string,
	startBlock BlockHeight) *AppointmentReceipt {

	return &AppointmentReceipt{
		UserSignature: userSig,
		StartBlock:    startBlock,
	}
}

// DataToSign returns the canonical encoding signed by the tower:
// user_signature || start_block.
func (r *AppointmentReceipt) DataToSign() []byte {
	b := make([]byte, 0, len(r.UserSignature)+4)
	b = append(b, r.UserSignature...)
	b = binary.BigEndian.AppendUint32(b, r.StartBlock)

	return b
}

// Sign signs the receipt with the tower's key.
func (r *AppointmentReceipt) Sign(key *btcec.PrivateKey) error {
	sig, err := msgsig.Sign(r.DataToSign(), key)
	if err != nil {
		return err
	}

	r.Signature = sig

	return nil
}

// Verify reports whether the receipt was signed by towerID.
func (r *AppointmentReceipt) Verify(towerID identity.TowerID) (bool, error) {
	if r.Signature == "" {
		return false, ErrUnsigned
	}

	return msgsig.VerifyIdentity(r.DataToSign(), r.Signature, towerID)
}
