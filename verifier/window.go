package verifier

import (
	"fmt"

	"github.com/lightningnetwork/towercheck/receipts"
)

// CheckSubscriptionWindow returns ErrAppointmentOutsideSubscription unless
// startBlock lies within [start, expiry].
func CheckSubscriptionWindow(startBlock, start,
	expiry receipts.BlockHeight) error {

	if startBlock < start || startBlock > expiry {
		return fmt.Errorf("%w: start block %d not in [%d, %d]",
			ErrAppointmentOutsideSubscription, startBlock, start,
			expiry)
	}

	return nil
}
