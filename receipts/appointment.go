package receipts

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/towercheck/msgsig"
)

// LocatorSize is the size of an appointment locator.
const LocatorSize = chainhash.HashSize

// Locator identifies a breach. By protocol convention it is the id of the
// breach transaction, in internal byte order.
type Locator [LocatorSize]byte

// TxID reinterprets the locator as a transaction id.
func (l Locator) TxID() chainhash.Hash {
	return chainhash.Hash(l)
}

// String returns the hex encoding of the locator.
func (l Locator) String() string {
	return hex.EncodeToString(l[:])
}

// MarshalText encodes the locator as hex.
func (l Locator) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a hex encoded locator.
func (l *Locator) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid locator: %w", err)
	}

	if len(b) != LocatorSize {
		return fmt.Errorf("invalid locator: expected %d bytes, got %d",
			LocatorSize, len(b))
	}

	copy(l[:], b)

	return nil
}

// Appointment is a client's request to a tower: if the breach named by
// Locator is seen, the tower must publish the transaction carried in
// EncryptedBlob.
type Appointment struct {
	// Locator is the lookup key of the breach.
	Locator Locator `json:"locator"`

	// EncryptedBlob is the serialized penalty transaction, obfuscated
	// until the breach is observed.
	EncryptedBlob HexBytes `json:"encrypted_blob"`

	// ToSelfDelay is the CSV delay of the to_self output of the breached
	// commitment.
	ToSelfDelay uint32 `json:"to_self_delay"`
}

// DataToSign returns the canonical encoding of the appointment signed by the
// user: locator || encrypted_blob || to_self_delay.
func (a *Appointment) DataToSign() []byte {
	b := make([]byte, 0, LocatorSize+len(a.EncryptedBlob)+4)
	b = append(b, a.Locator[:]...)
	b = append(b, a.EncryptedBlob...)
	b = binary.BigEndian.AppendUint32(b, a.ToSelfDelay)

	return b
}

// Sign returns the user's signature over the appointment.
func (a *Appointment) Sign(key *btcec.PrivateKey) (string, error) {
	return msgsig.Sign(a.DataToSign(), key)
}

// HexBytes is a byte slice that is hex encoded in text form.
type HexBytes []byte

// MarshalText encodes the bytes as hex.
func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

// UnmarshalText decodes hex encoded bytes.
func (h *HexBytes) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}

	*h = b

	return nil
}
