package abe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment is a payment record deposited in the store by a contributor.
//
// Payments are immutable: once in the store they are never modified.
type Payment struct {
	ID     string          // unique source id, e.g. the payment file name.
	Name   string          // display name of the payer, informative only.
	Payer  string          // payer identity (an email address).
	Amount decimal.Decimal // always positive.
}

// Validate checks the payment has a payer and a positive amount.
func (p Payment) Validate() error {
	if p.Payer == "" {
		return malformed("payment %q has no payer", p.ID)
	}
	if !p.Amount.IsPositive() {
		return malformed("payment %q has a non positive amount %s", p.ID, p.Amount)
	}
	return nil
}

func (p Payment) String() string {
	return fmt.Sprintf("%s paid %s (%s)", p.Payer, p.Amount, p.ID)
}
