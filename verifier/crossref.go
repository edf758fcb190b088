package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lightningnetwork/towercheck/receipts"
	"github.com/lightningnetwork/towercheck/txsource"
)

// CrossReference fetches the transaction identified by the appointment's
// locator from src and checks that it is byte for byte the transaction the
// user handed to the tower. The fetch is abandoned after timeout, a zero
// timeout only bounds it by ctx.
func CrossReference(ctx context.Context, src txsource.Source,
	appt *receipts.Appointment, timeout time.Duration) error {

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	txid := appt.Locator.TxID()

	log.Debugf("Fetching transaction %v from %s", txid, src.Name())

	tx, err := src.FetchTransaction(ctx, &txid)
	switch {
	case err == nil:

	case errors.Is(err, txsource.ErrTxNotFound):
		return fmt.Errorf("%w: %w", ErrTransactionNotResponded, err)

	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrProviderTimeout, err)

	default:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	var broadcast bytes.Buffer
	if err := tx.Serialize(&broadcast); err != nil {
		return fmt.Errorf("unable to serialize transaction %v: %w",
			txid, err)
	}

	if !bytes.Equal(broadcast.Bytes(), appt.EncryptedBlob) {
		log.Tracef("Transaction %v differs from appointment: %v",
			txid, newLogClosure(func() string {
				return spewTx(tx)
			}))

		return fmt.Errorf("%w: transaction %v does not match the "+
			"appointment", ErrReceiptVerificationFailed, txid)
	}

	return nil
}
