package ledger

import "errors"

// Sentinel errors returned by the ledger. Validation errors are returned
// before anything is written.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidPayment = errors.New("invalid payment")

	ErrUnknownInvoice = errors.New("unknown invoice")
	ErrUnknownStudent = errors.New("unknown student")

	// ErrInvoiceCancelled rejects payments against a cancelled invoice.
	ErrInvoiceCancelled = errors.New("invoice is cancelled")

	// ErrOverpayment means a payment component is larger than what is still owed in that currency.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")

	// ErrAllocationConflict is returned once sequence allocation has exhausted its retries.
	ErrAllocationConflict = errors.New("sequence allocation conflict")
)
