package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("invalid request")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrPayoutFailed        = errors.New("payout failed")

	// ErrBalanceLimit rejects a movement that would push a balance past
	// MaxBalance. It is a validation error.
	ErrBalanceLimit error = &ValidationError{Field: "amount", Message: "would take the balance over " + MaxBalance.StringFixed(Scale)}

	// ErrBusy is returned by stores when account locks could not be acquired
	// in time. The engine retries it before surfacing anything.
	ErrBusy = errors.New("concurrent modification")

	// The following leave state that needs reconciliation.
	ErrLedgerWriteFailedAfterCharge = errors.New("ledger write failed after charge")
	ErrLedgerWriteFailedAfterPayout = errors.New("ledger write failed after payout")
	ErrCompensationFailed           = errors.New("compensation failed after payout error")
	ErrTransferAborted              = errors.New("transfer aborted")

	// ErrGatewayOutcomeUnknown means the processor call ended without an
	// answer. The charge or payout may have happened.
	ErrGatewayOutcomeUnknown = errors.New("payment processor outcome unknown")
)

// ReconcileError reports a movement whose gateway side and ledger side
// disagree. Reference is the processor id when one was issued.
type ReconcileError struct {
	Kind      error
	Reference string
	Err       error
}

func (e *ReconcileError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("%v (reference %s): %v", e.Kind, e.Reference, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ReconcileError) Unwrap() []error { return []error{e.Kind, e.Err} }

// ValidationError describes a single rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Kind is the stable machine-readable name of an error class.
type Kind string

const (
	KindValidation                   Kind = "validation_error"
	KindNotFound                     Kind = "not_found"
	KindAlreadyExists                Kind = "already_exists"
	KindForbidden                    Kind = "forbidden"
	KindInsufficientBalance          Kind = "insufficient_balance"
	KindPaymentDeclined              Kind = "payment_declined"
	KindPayoutFailed                 Kind = "payout_failed"
	KindConcurrentModification       Kind = "concurrent_modification"
	KindLedgerWriteFailedAfterCharge Kind = "ledger_write_failed_after_charge"
	KindLedgerWriteFailedAfterPayout Kind = "ledger_write_failed_after_payout"
	KindCompensationFailed           Kind = "compensation_failed"
	KindTransferAborted              Kind = "transfer_aborted"
	KindGatewayOutcomeUnknown        Kind = "gateway_outcome_unknown"
	KindInternal                     Kind = "internal_error"
)

// Reconciliation kinds are checked first: they may wrap a more generic cause.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrLedgerWriteFailedAfterCharge, KindLedgerWriteFailedAfterCharge},
	{ErrLedgerWriteFailedAfterPayout, KindLedgerWriteFailedAfterPayout},
	{ErrCompensationFailed, KindCompensationFailed},
	{ErrTransferAborted, KindTransferAborted},
	{ErrGatewayOutcomeUnknown, KindGatewayOutcomeUnknown},
	{ErrValidation, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrForbidden, KindForbidden},
	{ErrInsufficientBalance, KindInsufficientBalance},
	{ErrPaymentDeclined, KindPaymentDeclined},
	{ErrPayoutFailed, KindPayoutFailed},
	{ErrBusy, KindConcurrentModification},
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
