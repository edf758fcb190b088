package txsource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Mock is an in-memory Source used in tests.
type Mock struct {
	mu    sync.Mutex
	txs   map[chainhash.Hash]*wire.MsgTx
	err   error
	delay time.Duration
	calls int
}

// A compile time check to ensure Mock implements the Source and Pinger
// interfaces.
var (
	_ Source = (*Mock)(nil)
	_ Pinger = (*Mock)(nil)
)

// NewMock returns an empty mock source.
func NewMock() *Mock {
	return &Mock{
		txs: make(map[chainhash.Hash]*wire.MsgTx),
	}
}

// AddTx makes tx available under its own id.
func (m *Mock) AddTx(tx *wire.MsgTx) {
	m.AddTxWithID(tx.TxHash(), tx)
}

// AddTxWithID makes tx available under txid.
func (m *Mock) AddTxWithID(txid chainhash.Hash, tx *wire.MsgTx) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs[txid] = tx.Copy()
}

// SetErr forces every subsequent request to fail with err. A nil err
// restores normal operation.
func (m *Mock) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// SetDelay delays every subsequent response by d.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delay = d
}

// Calls returns the number of FetchTransaction calls served so far.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Name returns a description of the backend.
//
// NOTE: This is part of the Source interface.
func (m *Mock) Name() string {
	return "mock"
}

// FetchTransaction returns a copy of the stored transaction.
//
// NOTE: This is part of the Source interface.
func (m *Mock) FetchTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	m.mu.Lock()
	m.calls++
	delay, forcedErr := m.delay, m.err
	tx, ok := m.txs[*txid]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrUnavailable,
				ctx.Err())
		}
	}

	switch {
	case forcedErr != nil:
		return nil, forcedErr

	case !ok:
		return nil, fmt.Errorf("%w: %v", ErrTxNotFound, txid)
	}

	return tx.Copy(), nil
}

// Ping fails with the forced error, if any.
//
// NOTE: This is part of the Pinger interface.
func (m *Mock) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.err
}
