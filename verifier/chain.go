package verifier

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/towercheck/identity"
	"github.com/lightningnetwork/towercheck/msgsig"
	"github.com/lightningnetwork/towercheck/receipts"
)

// ChainReport holds the result of each link of the receipt chain.
type ChainReport struct {
	// RegReceipt is true if the registration receipt was signed by the
	// tower for the user.
	RegReceipt bool `json:"reg_receipt"`

	// UserSignature is true if the appointment was signed by the user.
	UserSignature bool `json:"user_signature"`

	// AppReceipt is true if the appointment receipt was signed by the
	// tower over the user's signature.
	AppReceipt bool `json:"app_receipt"`
}

// Valid returns true if every link of the chain holds.
func (r ChainReport) Valid() bool {
	return r.RegReceipt && r.UserSignature && r.AppReceipt
}

// CheckReceiptChain verifies the chain of custody between user and tower:
// the registration receipt, the user's signature over the appointment and
// the appointment receipt that embeds it. All links are checked even after
// one failed. A signature that can't be parsed yields ErrMalformedSignature,
// any other broken link ErrReceiptVerificationFailed.
func CheckReceiptChain(userID identity.UserID, towerID identity.TowerID,
	reg *receipts.RegistrationReceipt, app *receipts.AppointmentReceipt,
	appt *receipts.Appointment, userSig string) (ChainReport, error) {

	var (
		report    ChainReport
		malformed []error
	)

	// The registration must have been issued by the tower to this user.
	ok, err := reg.Verify(towerID)
	if err != nil {
		malformed = append(malformed,
			fmt.Errorf("registration receipt: %w", err))
	}
	report.RegReceipt = ok && reg.UserID == userID
	log.Debugf("Registration receipt of user %v signed by tower %v: %v",
		userID, towerID, report.RegReceipt)

	report.UserSignature, err = msgsig.VerifyIdentity(
		appt.DataToSign(), userSig, userID,
	)
	if err != nil {
		malformed = append(malformed,
			fmt.Errorf("user signature: %w", err))
	}
	log.Debugf("Appointment %v signed by user %v: %v", appt.Locator,
		userID, report.UserSignature)

	// The appointment receipt must commit to the very signature the user
	// produced for this appointment.
	ok, err = app.Verify(towerID)
	if err != nil {
		malformed = append(malformed,
			fmt.Errorf("appointment receipt: %w", err))
	}
	report.AppReceipt = ok && app.UserSignature == userSig
	log.Debugf("Appointment receipt for %v signed by tower %v: %v",
		appt.Locator, towerID, report.AppReceipt)

	switch {
	case len(malformed) > 0:
		return report, errors.Join(malformed...)

	case !report.Valid():
		return report, fmt.Errorf("%w: reg_receipt=%v "+
			"user_signature=%v app_receipt=%v",
			ErrReceiptVerificationFailed, report.RegReceipt,
			report.UserSignature, report.AppReceipt)
	}

	return report, nil
}
