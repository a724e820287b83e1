package abe

import (
	"errors"
	"fmt"
)

// Error kinds reported by the ledger. They are always wrapped with some
// context, use errors.Is to test for them.
var (
	// ErrMalformedRecord is returned when a payment, price, valuation or
	// attribution record cannot be parsed into its expected numeric shape.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrCorruptLedger is returned when the attribution shares do not sum to 1.
	ErrCorruptLedger = errors.New("corrupt ledger")

	// ErrPartialWrite is returned when a payment's transactions were committed
	// but the attribution table could not be rewritten, or when a previous run
	// left such a pending investment behind.
	ErrPartialWrite = errors.New("partial write inconsistency")
)

// PaymentError reports a failure while processing a single payment.
type PaymentError struct {
	ID  string // source id of the payment
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %q: %v", e.ID, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// malformed wraps an error as an ErrMalformedRecord.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
