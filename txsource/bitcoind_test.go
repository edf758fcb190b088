package txsource

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

const (
	testRPCUser = "user"
	testRPCPass = "pass"
)

// rpcRequest is the subset of a JSON-RPC request the fake bitcoind reads.
type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// fakeBitcoind serves getrawtransaction and getblockcount from a fixed set of
// transactions.
type fakeBitcoind struct {
	t     *testing.T
	txs   map[string]string
	stall chan struct{}
}

func (f *fakeBitcoind) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != testRPCUser || pass != testRPCPass {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if f.stall != nil {
		<-f.stall
	}

	resp := map[string]interface{}{
		"id":     req.ID,
		"result": nil,
		"error":  nil,
	}

	switch req.Method {
	case "getblockcount":
		resp["result"] = 800_000

	case "getrawtransaction":
		var txid string
		require.NoError(f.t, json.Unmarshal(req.Params[0], &txid))

		rawTx, ok := f.txs[txid]
		if !ok {
			resp["error"] = map[string]interface{}{
				"code": -5,
				"message": "No such mempool or blockchain " +
					"transaction. Use gettransaction " +
					"for wallet transactions.",
			}
			break
		}
		resp["result"] = rawTx

	default:
		resp["error"] = map[string]interface{}{
			"code":    -32601,
			"message": "Method not found",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func testTx() *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 1},
		Witness:          wire.TxWitness{{0x01, 0x02}},
	})
	tx.AddTxOut(wire.NewTxOut(5000, []byte{0x00, 0x14}))

	return tx
}

func newTestBitcoind(t *testing.T, f *fakeBitcoind) *Bitcoind {
	t.Helper()

	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	src, err := NewBitcoind(&BitcoindConfig{
		RPCHost:   strings.TrimPrefix(server.URL, "http://"),
		RPCUser:   testRPCUser,
		RPCPass:   testRPCPass,
		NetParams: &chaincfg.RegressionNetParams,
	})
	require.NoError(t, err)
	t.Cleanup(src.Stop)

	return src
}

// TestBitcoindFetch asserts that known transactions are returned and that
// unknown ones map to ErrTxNotFound.
func TestBitcoindFetch(t *testing.T) {
	tx := testTx()

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	txid := tx.TxHash()
	src := newTestBitcoind(t, &fakeBitcoind{
		t: t,
		txs: map[string]string{
			txid.String(): hex.EncodeToString(buf.Bytes()),
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fetched, err := src.FetchTransaction(ctx, &txid)
	require.NoError(t, err)
	require.Equal(t, txid, fetched.TxHash())

	var unknown chainhash.Hash
	unknown[0] = 0x01
	_, err = src.FetchTransaction(ctx, &unknown)
	require.ErrorIs(t, err, ErrTxNotFound)

	require.NoError(t, src.Ping(ctx))
}

// TestBitcoindCancel asserts that a stalled backend does not block callers
// beyond their context.
func TestBitcoindCancel(t *testing.T) {
	stall := make(chan struct{})
	src := newTestBitcoind(t, &fakeBitcoind{
		t:     t,
		stall: stall,
	})
	defer close(stall)

	ctx, cancel := context.WithTimeout(
		context.Background(), 50*time.Millisecond,
	)
	defer cancel()

	var txid chainhash.Hash
	_, err := src.FetchTransaction(ctx, &txid)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestBitcoindStalledBackend asserts that callers beyond the number of
// requests rpcclient can queue still return at their deadline, and that
// abandoned requests keep holding their in-flight slot until bitcoind
// answers.
func TestBitcoindStalledBackend(t *testing.T) {
	stall := make(chan struct{})
	src := newTestBitcoind(t, &fakeBitcoind{
		t:     t,
		stall: stall,
	})
	defer close(stall)

	const numCallers = 150

	var (
		wg   sync.WaitGroup
		errs = make(chan error, numCallers)
	)
	for i := 0; i < numCallers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(
				context.Background(), 100*time.Millisecond,
			)
			defer cancel()

			txid := chainhash.Hash{byte(i)}
			_, err := src.FetchTransaction(ctx, &txid)
			errs <- err
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("%d of %d fetches still blocked past their deadline",
			numCallers-len(errs), numCallers)
	}

	close(errs)
	for err := range errs {
		require.ErrorIs(t, err, ErrUnavailable)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}

	// The abandoned requests still occupy every slot.
	require.False(t, src.inFlight.TryAcquire(1))

	ctx, cancel := context.WithTimeout(
		context.Background(), 50*time.Millisecond,
	)
	defer cancel()
	require.ErrorIs(t, src.Ping(ctx), context.DeadlineExceeded)
}

// TestDefaultBitcoindPort asserts that hosts without a port use the network
// default.
func TestDefaultBitcoindPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  BitcoindConfig
		exp  string
	}{
		{
			name: "mainnet default",
			cfg: BitcoindConfig{
				RPCHost: "localhost",
			},
			exp: "localhost:8332",
		},
		{
			name: "regtest default",
			cfg: BitcoindConfig{
				RPCHost:   "localhost",
				NetParams: &chaincfg.RegressionNetParams,
			},
			exp: "localhost:18443",
		},
		{
			name: "explicit port",
			cfg: BitcoindConfig{
				RPCHost:   "10.0.0.1",
				RPCPort:   1234,
				NetParams: &chaincfg.SigNetParams,
			},
			exp: "10.0.0.1:1234",
		},
		{
			name: "port in host",
			cfg: BitcoindConfig{
				RPCHost: "10.0.0.1:9999",
				RPCPort: 1234,
			},
			exp: "10.0.0.1:9999",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, test.exp, test.cfg.hostPort())
		})
	}
}
