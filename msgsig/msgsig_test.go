package msgsig

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/stretchr/testify/require"
	"github.com/tv42/zbase32"
)

// TestSignRecover asserts that the signer's key is recovered from a fresh
// signature and that the recovery is bound to the signed message.
func TestSignRecover(t *testing.T) {
	t.Parallel()

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("appointment")
	sig, err := Sign(msg, priv)
	require.NoError(t, err)

	pubKey, err := RecoverPubKey(msg, sig)
	require.NoError(t, err)
	require.True(t, pubKey.IsEqual(priv.PubKey()))

	// Recovering over a different message yields a key, just not ours.
	other, err := RecoverPubKey([]byte("appointment!"), sig)
	require.NoError(t, err)
	require.False(t, other.IsEqual(priv.PubKey()))
}

// TestVerifyIdentity asserts that only the expected identity verifies.
func TestVerifyIdentity(t *testing.T) {
	t.Parallel()

	towerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("registration receipt")
	sig, err := Sign(msg, towerKey)
	require.NoError(t, err)

	ok, err := VerifyIdentity(
		msg, sig, identity.NewTowerID(towerKey.PubKey()),
	)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyIdentity(
		msg, sig, identity.NewTowerID(otherKey.PubKey()),
	)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestRecoverMalformed asserts that undecodable signatures are reported as
// ErrMalformedSignature.
func TestRecoverMalformed(t *testing.T) {
	t.Parallel()

	// A 65 byte signature with an out of range recovery flag.
	badFlag := make([]byte, CompactSigSize)
	badFlag[0] = 0x01
	badFlag[1] = 0x01
	badFlag[33] = 0x01

	tests := []struct {
		name string
		sig  string
	}{
		{
			name: "empty",
			sig:  "",
		},
		{
			name: "not zbase32",
			sig:  "0lv!",
		},
		{
			name: "short",
			sig:  zbase32.EncodeToString(make([]byte, 64)),
		},
		{
			name: "bad recovery flag",
			sig:  zbase32.EncodeToString(badFlag),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := RecoverPubKey([]byte("msg"), test.sig)
			require.ErrorIs(t, err, ErrMalformedSignature)

			_, err = VerifyIdentity(
				[]byte("msg"), test.sig, identity.TowerID{},
			)
			require.ErrorIs(t, err, ErrMalformedSignature)
		})
	}
}
