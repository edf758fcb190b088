package bundle

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/towercheck/identity"
	"github.com/stretchr/testify/require"
)

func newTestBundle(t *testing.T) *Bundle {
	t.Helper()

	userKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	towerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	b, err := NewSigned(userKey, towerKey, DefaultFixtureParams())
	require.NoError(t, err)

	return b
}

// TestTLVRoundTrip asserts that a bundle survives TLV encoding.
func TestTLVRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))

	var decoded Bundle
	require.NoError(t, decoded.Decode(&buf))
	require.Equal(t, *b, decoded)
}

// TestParseFormats asserts that Parse accepts both JSON and TLV input and
// rejects garbage.
func TestParseFormats(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)

	jsonBytes, err := json.Marshal(b)
	require.NoError(t, err)

	fromJSON, err := Parse(jsonBytes)
	require.NoError(t, err)
	require.Equal(t, b, fromJSON)

	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))

	fromTLV, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, b, fromTLV)

	_, err = Parse([]byte(`{"user_id": 12}`))
	require.ErrorIs(t, err, ErrInvalidBundle)
}

// TestFileRoundTrip asserts that bundles written to disk are read back
// unchanged in both encodings.
func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t)
	dir := t.TempDir()

	for _, binary := range []bool{false, true} {
		path := filepath.Join(dir, "bundle")
		require.NoError(t, WriteFile(path, b, binary))

		read, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, b, read)

		require.NoError(t, os.Remove(path))
	}
}

// TestValidate asserts that incomplete bundles are rejected.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(b *Bundle)
		expErr error
	}{
		{
			name:   "complete",
			mutate: func(*Bundle) {},
		},
		{
			name: "missing user",
			mutate: func(b *Bundle) {
				b.UserID = identity.UserID{}
			},
			expErr: ErrInvalidBundle,
		},
		{
			name: "missing tower",
			mutate: func(b *Bundle) {
				b.TowerID = identity.TowerID{}
			},
			expErr: ErrInvalidBundle,
		},
		{
			name: "missing blob",
			mutate: func(b *Bundle) {
				b.Appointment.EncryptedBlob = nil
			},
			expErr: ErrInvalidBundle,
		},
		{
			name: "inverted subscription",
			mutate: func(b *Bundle) {
				b.RegReceipt.SubscriptionStart =
					b.RegReceipt.SubscriptionExpiry + 1
			},
			expErr: ErrInvalidBundle,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b := newTestBundle(t)
			test.mutate(b)

			err := b.Validate()
			if test.expErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, test.expErr)
		})
	}
}
