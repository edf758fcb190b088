// Package msgsig implements the Lightning signed-message scheme used by
// watchtower clients and towers to sign receipts and appointments.
//
// A signature is a 65-byte compact recoverable ECDSA signature over
// sha256d("Lightning Signed Message:" || msg), encoded with zbase32. Since the
// signer's public key is recovered from the signature itself, verification is
// always performed by comparing the recovered key against the expected
// identity.
package msgsig

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/tv42/zbase32"
)

// CompactSigSize is the size of a compact recoverable signature.
const CompactSigSize = 65

var (
	// signedMsgPrefix is a special prefix that we'll prepend to any
	// messages we sign/verify. We do this to ensure that we don't
	// accidentally sign a sighash, or other sensitive material.
	signedMsgPrefix = []byte("Lightning Signed Message:")

	// ErrMalformedSignature is returned when a signature cannot be decoded
	// or no public key can be recovered from it.
	ErrMalformedSignature = errors.New("malformed signature")
)

// digest returns the double sha256 of the prefixed message.
func digest(msg []byte) []byte {
	prefixed := make([]byte, 0, len(signedMsgPrefix)+len(msg))
	prefixed = append(prefixed, signedMsgPrefix...)
	prefixed = append(prefixed, msg...)

	return chainhash.DoubleHashB(prefixed)
}

// Sign signs msg with key and returns the zbase32 encoded signature.
func Sign(msg []byte, key *btcec.PrivateKey) (string, error) {
	if key == nil {
		return "", errors.New("no signing key provided")
	}

	sig := ecdsa.SignCompact(key, digest(msg), true)

	return zbase32.EncodeToString(sig), nil
}

// RecoverPubKey recovers the public key of the signer of msg from the zbase32
// encoded signature.
func RecoverPubKey(msg []byte, sig string) (*btcec.PublicKey, error) {
	rawSig, err := zbase32.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to decode zbase32: %v",
			ErrMalformedSignature, err)
	}

	if len(rawSig) != CompactSigSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrMalformedSignature, CompactSigSize, len(rawSig))
	}

	pubKey, _, err := ecdsa.RecoverCompact(rawSig, digest(msg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return pubKey, nil
}

// VerifyIdentity recovers the signer of msg and reports whether it matches
// expected. A signature produced by any other key is reported as a mismatch
// rather than an error, only undecodable signatures return an error.
func VerifyIdentity(msg []byte, sig string,
	expected identity.Identity) (bool, error) {

	pubKey, err := RecoverPubKey(msg, sig)
	if err != nil {
		return false, err
	}

	return bytes.Equal(
		pubKey.SerializeCompressed(), expected.Serialize(),
	), nil
}
