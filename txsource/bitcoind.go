package txsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/semaphore"
)

// DefaultBitcoindMaxInFlight is the default number of RPCs that may be
// outstanding at once. It stays below the 100 requests rpcclient queues in
// HTTP POST mode, so queueing a request never blocks.
const DefaultBitcoindMaxInFlight = 50

// bitcoindPorts maps each network to bitcoind's default RPC port.
var bitcoindPorts = map[string]uint16{
	chaincfg.MainNetParams.Name:       8332,
	chaincfg.TestNet3Params.Name:      18332,
	chaincfg.RegressionNetParams.Name: 18443,
	chaincfg.SigNetParams.Name:        38332,
	chaincfg.SimNetParams.Name:        18556,
}

// DefaultBitcoindPort returns bitcoind's default RPC port for the passed
// network. Unknown networks default to mainnet.
func DefaultBitcoindPort(params *chaincfg.Params) uint16 {
	if port, ok := bitcoindPorts[params.Name]; ok {
		return port
	}

	return bitcoindPorts[chaincfg.MainNetParams.Name]
}

// BitcoindConfig holds the connection parameters of a bitcoind backend.
type BitcoindConfig struct {
	// RPCHost is the host of the RPC server. It may include a port, in
	// which case RPCPort is ignored.
	RPCHost string

	// RPCPort is the RPC port. If zero, the default port of NetParams is
	// used.
	RPCPort uint16

	// RPCUser and RPCPass authenticate against the RPC server.
	RPCUser string
	RPCPass string

	// NetParams selects the network the backend runs on.
	NetParams *chaincfg.Params

	// MaxInFlight bounds the number of outstanding RPCs, including those
	// abandoned by cancelled callers. Zero or values above
	// DefaultBitcoindMaxInFlight select DefaultBitcoindMaxInFlight.
	MaxInFlight int
}

// hostPort resolves the address of the RPC server.
func (c *BitcoindConfig) hostPort() string {
	if _, _, err := net.SplitHostPort(c.RPCHost); err == nil {
		return c.RPCHost
	}

	port := c.RPCPort
	if port == 0 {
		params := c.NetParams
		if params == nil {
			params = &chaincfg.MainNetParams
		}
		port = DefaultBitcoindPort(params)
	}

	return net.JoinHostPort(c.RPCHost, strconv.Itoa(int(port)))
}

// Bitcoind is a Source backed by the JSON-RPC interface of bitcoind. A
// single pooled client is shared by all requests.
type Bitcoind struct {
	host   string
	client *rpcclient.Client

	// inFlight holds one slot per outstanding RPC. A slot is released
	// when bitcoind answers, not when the caller gives up.
	inFlight *semaphore.Weighted
}

// A compile time check to ensure Bitcoind implements the Source and Pinger
// interfaces.
var (
	_ Source = (*Bitcoind)(nil)
	_ Pinger = (*Bitcoind)(nil)
)

// NewBitcoind creates a new bitcoind source. No connection is made until the
// first request.
func NewBitcoind(cfg *BitcoindConfig) (*Bitcoind, error) {
	host := cfg.hostPort()

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:                host,
		User:                cfg.RPCUser,
		Pass:                cfg.RPCPass,
		DisableConnectOnNew: true,
		DisableTLS:          true,
		HTTPPostMode:        true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create bitcoind client: %w",
			err)
	}

	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 || maxInFlight > DefaultBitcoindMaxInFlight {
		maxInFlight = DefaultBitcoindMaxInFlight
	}

	log.Infof("Using bitcoind backend at %v", host)

	return &Bitcoind{
		host:     host,
		client:   client,
		inFlight: semaphore.NewWeighted(int64(maxInFlight)),
	}, nil
}

// Name returns a description of the backend.
//
// NOTE: This is part of the Source interface.
func (b *Bitcoind) Name() string {
	return "bitcoind@" + b.host
}

// FetchTransaction queries getrawtransaction for txid. The call returns as
// soon as ctx is done, even if bitcoind never answers.
//
// NOTE: This is part of the Source interface.
func (b *Bitcoind) FetchTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	result := callRPC(ctx, b.inFlight, func() (*wire.MsgTx, error) {
		tx, err := b.client.GetRawTransactionAsync(txid).Receive()
		if err != nil {
			return nil, err
		}

		return tx.MsgTx(), nil
	})

	tx, err := result.Unpack()
	switch {
	case err == nil:
		return tx, nil

	case isCtxErr(ctx, err):
		log.Debugf("Abandoning getrawtransaction %v: %v", txid, err)

		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)

	default:
		return nil, mapRPCError(txid, err)
	}
}

// Ping checks that bitcoind answers RPC calls.
//
// NOTE: This is part of the Pinger interface.
func (b *Bitcoind) Ping(ctx context.Context) error {
	result := callRPC(ctx, b.inFlight, func() (int64, error) {
		return b.client.GetBlockCountAsync().Receive()
	})

	_, err := result.Unpack()
	switch {
	case err == nil:
		return nil

	case isCtxErr(ctx, err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)

	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// callRPC runs call on its own goroutine while holding a slot of inFlight.
// It returns the RPC's result, or ctx's error once ctx is done, whichever
// comes first. Both queueing and awaiting the request happen on the
// goroutine, since rpcclient blocks on either when bitcoind stalls.
func callRPC[T any](ctx context.Context, inFlight *semaphore.Weighted,
	call func() (T, error)) fn.Result[T] {

	if err := inFlight.Acquire(ctx, 1); err != nil {
		return fn.Err[T](err)
	}

	resultChan := make(chan fn.Result[T], 1)
	go func() {
		defer inFlight.Release(1)

		val, err := call()
		if err != nil {
			resultChan <- fn.Err[T](err)
			return
		}

		resultChan <- fn.Ok(val)
	}()

	select {
	case result := <-resultChan:
		return result

	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// isCtxErr reports whether err is the error of the done ctx.
func isCtxErr(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()

	return ctxErr != nil && errors.Is(err, ctxErr)
}

// Stop shuts down the RPC client.
func (b *Bitcoind) Stop() {
	b.client.Shutdown()
	b.client.WaitForShutdown()
}

// mapRPCError classifies an error returned by getrawtransaction. bitcoind
// reuses ErrRPCNoTxInfo for every flavour of unknown transaction, with or
// without txindex.
func mapRPCError(txid *chainhash.Hash, err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCNoTxInfo {
		return fmt.Errorf("%w: %v: %v", ErrTxNotFound, txid,
			rpcErr.Message)
	}

	return fmt.Errorf("%w: getrawtransaction %v: %v", ErrUnavailable,
		txid, err)
}
