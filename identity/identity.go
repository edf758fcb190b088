package identity

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// PubKeySize is the size of the compressed public key encoding that backs
// every identity.
const PubKeySize = btcec.PubKeyBytesLenCompressed

var (
	// ErrInvalidKeyEncoding signals that a byte slice could not be parsed
	// as a compressed secp256k1 public key.
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")
)

// Identity is implemented by any identity that can be compared against a
// recovered public key.
type Identity interface {
	// Serialize returns the compressed public key encoding of the
	// identity.
	Serialize() []byte
}

// UserID identifies a watchtower client by its public key.
type UserID [PubKeySize]byte

// TowerID identifies a watchtower by its public key.
type TowerID [PubKeySize]byte

// A compile time check to ensure both identities satisfy the Identity
// interface.
var (
	_ Identity = UserID{}
	_ Identity = TowerID{}
)

// NewUserID returns the UserID of the passed public key.
func NewUserID(pubKey *btcec.PublicKey) UserID {
	var id UserID
	copy(id[:], pubKey.SerializeCompressed())

	return id
}

// NewTowerID returns the TowerID of the passed public key.
func NewTowerID(pubKey *btcec.PublicKey) TowerID {
	var id TowerID
	copy(id[:], pubKey.SerializeCompressed())

	return id
}

// DeserializeUserID parses a UserID from its compressed public key encoding.
func DeserializeUserID(b []byte) (UserID, error) {
	raw, err := parseCompressed(b)
	if err != nil {
		return UserID{}, err
	}

	return UserID(raw), nil
}

// DeserializeTowerID parses a TowerID from its compressed public key
// encoding.
func DeserializeTowerID(b []byte) (TowerID, error) {
	raw, err := parseCompressed(b)
	if err != nil {
		return TowerID{}, err
	}

	return TowerID(raw), nil
}

// Serialize returns the 33-byte compressed public key encoding.
func (u UserID) Serialize() []byte {
	b := make([]byte, PubKeySize)
	copy(b, u[:])

	return b
}

// PubKey parses the identity's public key.
func (u UserID) PubKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(u[:])
}

// String returns the hex encoding of the identity.
func (u UserID) String() string {
	return hex.EncodeToString(u[:])
}

// MarshalText encodes the identity as hex.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText decodes a hex encoded identity.
func (u *UserID) UnmarshalText(text []byte) error {
	raw, err := decodeHex(text)
	if err != nil {
		return err
	}

	*u = UserID(raw)

	return nil
}

// Serialize returns the 33-byte compressed public key encoding.
func (t TowerID) Serialize() []byte {
	b := make([]byte, PubKeySize)
	copy(b, t[:])

	return b
}

// PubKey parses the identity's public key.
func (t TowerID) PubKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(t[:])
}

// String returns the hex encoding of the identity.
func (t TowerID) String() string {
	return hex.EncodeToString(t[:])
}

// MarshalText encodes the identity as hex.
func (t TowerID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a hex encoded identity.
func (t *TowerID) UnmarshalText(text []byte) error {
	raw, err := decodeHex(text)
	if err != nil {
		return err
	}

	*t = TowerID(raw)

	return nil
}

// parseCompressed validates that b is a compressed encoding of a point on the
// curve. Uncompressed and hybrid encodings are rejected even though btcec
// accepts them, since identities compare by their compressed bytes.
func parseCompressed(b []byte) ([PubKeySize]byte, error) {
	var raw [PubKeySize]byte

	if len(b) != PubKeySize {
		return raw, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeyEncoding, PubKeySize, len(b))
	}

	if _, err := btcec.ParsePubKey(b); err != nil {
		return raw, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	copy(raw[:], b)

	return raw, nil
}

func decodeHex(text []byte) ([PubKeySize]byte, error) {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return [PubKeySize]byte{}, fmt.Errorf("%w: %v",
			ErrInvalidKeyEncoding, err)
	}

	return parseCompressed(b)
}
