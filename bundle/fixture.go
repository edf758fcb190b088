package bundle

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/lightningnetwork/towercheck/receipts"
)

// FixtureParams tunes the bundle produced by NewSigned.
type FixtureParams struct {
	// AvailableSlots is copied into the registration receipt.
	AvailableSlots uint32

	// SubscriptionStart and SubscriptionExpiry bound the registration.
	SubscriptionStart  uint32
	SubscriptionExpiry uint32

	// StartBlock is the appointment receipt's start block.
	StartBlock uint32

	// ToSelfDelay is copied into the appointment.
	ToSelfDelay uint32

	// Tx is the transaction the appointment points at. Its id becomes the
	// locator and its serialization the encrypted blob. A random
	// transaction is used if nil.
	Tx *wire.MsgTx
}

// DefaultFixtureParams returns params for a bundle whose appointment starts
// one block into its subscription.
func DefaultFixtureParams() *FixtureParams {
	return &FixtureParams{
		AvailableSlots:     21,
		SubscriptionStart:  800_000,
		SubscriptionExpiry: 804_320,
		StartBlock:         800_001,
		ToSelfDelay:        144,
	}
}

// NewSigned builds a bundle in which the registration and appointment
// receipts are signed by towerKey and the appointment by userKey, the way
// client and tower software produce them.
func NewSigned(userKey, towerKey *btcec.PrivateKey,
	p *FixtureParams) (*Bundle, error) {

	tx := p.Tx
	if tx == nil {
		var err error
		tx, err = RandomTx()
		if err != nil {
			return nil, err
		}
	}

	var blob bytes.Buffer
	if err := tx.Serialize(&blob); err != nil {
		return nil, err
	}

	userID := identity.NewUserID(userKey.PubKey())

	regReceipt, err := receipts.NewRegistrationReceipt(
		userID, p.AvailableSlots, p.SubscriptionStart,
		p.SubscriptionExpiry,
	)
	if err != nil {
		return nil, err
	}
	if err := regReceipt.Sign(towerKey); err != nil {
		return nil, err
	}

	appt := receipts.Appointment{
		Locator:       receipts.Locator(tx.TxHash()),
		EncryptedBlob: blob.Bytes(),
		ToSelfDelay:   p.ToSelfDelay,
	}
	userSig, err := appt.Sign(userKey)
	if err != nil {
		return nil, err
	}

	appReceipt := receipts.NewAppointmentReceipt(userSig, p.StartBlock)
	if err := appReceipt.Sign(towerKey); err != nil {
		return nil, err
	}

	return &Bundle{
		UserID:        userID,
		TowerID:       identity.NewTowerID(towerKey.PubKey()),
		RegReceipt:    *regReceipt,
		AppReceipt:    *appReceipt,
		Appointment:   appt,
		UserSignature: userSig,
	}, nil
}

// RandomTx returns a one-input one-output segwit transaction spending a
// random outpoint.
func RandomTx() (*wire.MsgTx, error) {
	var prevHash chainhash.Hash
	if _, err := rand.Read(prevHash[:]); err != nil {
		return nil, fmt.Errorf("unable to read random bytes: %w", err)
	}

	witness := make([]byte, 72)
	if _, err := rand.Read(witness); err != nil {
		return nil, fmt.Errorf("unable to read random bytes: %w", err)
	}

	pkScript := make([]byte, 34)
	pkScript[0], pkScript[1] = 0x00, 0x20
	if _, err := rand.Read(pkScript[2:]); err != nil {
		return nil, fmt.Errorf("unable to read random bytes: %w", err)
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash},
		Witness:          wire.TxWitness{witness},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(100_000, pkScript))

	return tx, nil
}
