package txsource

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrTxNotFound is returned when the backend was reached but does not
	// know the requested transaction.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrUnavailable is returned when the backend could not be queried,
	// e.g. it is unreachable, rejected our credentials or the request was
	// cancelled.
	ErrUnavailable = errors.New("chain backend unavailable")
)

// Source is a read-only view of the blockchain that can produce transactions
// by id.
type Source interface {
	// FetchTransaction returns the transaction identified by txid. It
	// returns an error wrapping ErrTxNotFound if the backend has no such
	// transaction, or ErrUnavailable for any other failure. The call must
	// return once ctx is done.
	FetchTransaction(ctx context.Context,
		txid *chainhash.Hash) (*wire.MsgTx, error)

	// Name is a short human readable description of the backend.
	Name() string
}

// Pinger is implemented by sources that can cheaply check that their
// backend is reachable.
type Pinger interface {
	// Ping returns an error if the backend cannot be reached.
	Ping(ctx context.Context) error
}
