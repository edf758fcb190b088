package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/checkrpc"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/lightningnetwork/towercheck/verifier"
	"github.com/stretchr/testify/require"
)

func newTestBundle(t *testing.T, p *bundle.FixtureParams) *bundle.Bundle {
	t.Helper()

	userKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	towerKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	b, err := bundle.NewSigned(userKey, towerKey, p)
	require.NoError(t, err)

	return b
}

// TestPostBundle asserts that bundles submitted to a daemon come back with
// the daemon's verdict.
func TestPostBundle(t *testing.T) {
	t.Parallel()

	source := txsource.NewMock()
	v, err := verifier.New(&verifier.Config{Source: source})
	require.NoError(t, err)
	server, err := checkrpc.New(&checkrpc.Config{Verifier: v})
	require.NoError(t, err)

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)
	addr := strings.TrimPrefix(httpServer.URL, "http://")

	tx, err := bundle.RandomTx()
	require.NoError(t, err)
	source.AddTx(tx)

	p := bundle.DefaultFixtureParams()
	p.Tx = tx
	resp, err := postBundle(addr, newTestBundle(t, p), time.Second)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, verifier.OutcomeVerified, resp.Outcome)

	resp, err = postBundle(
		addr, newTestBundle(t, bundle.DefaultFixtureParams()),
		time.Second,
	)
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, verifier.OutcomeTransactionNotResponded,
		resp.Outcome)
}

// TestRenderResult asserts that the table lists every link of the chain and
// the failure reason.
func TestRenderResult(t *testing.T) {
	t.Parallel()

	b := newTestBundle(t, bundle.DefaultFixtureParams())

	var buf bytes.Buffer
	renderResult(&buf, b, &verifyResult{
		Outcome: verifier.OutcomeReceiptVerificationFailed,
		Error:   "receipt verification failed",
		Chain: verifier.ChainReport{
			RegReceipt:    true,
			UserSignature: true,
		},
		Duration: "3ms",
	})

	out := buf.String()
	require.Contains(t, out, b.Appointment.Locator.String())
	require.Contains(t, out, "INVALID")
	require.Contains(t, out, "ReceiptVerificationFailed")
	require.Contains(t, out, "[800000, 804320]")
}

// TestNetworkParams asserts the mapping of network names.
func TestNetworkParams(t *testing.T) {
	t.Parallel()

	params, err := networkParams("signet")
	require.NoError(t, err)
	require.Equal(t, &chaincfg.SigNetParams, params)

	_, err = networkParams("litecoin")
	require.Error(t, err)
}
