package abe

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunReport describes what a run did.
type RunReport struct {
	ID        string // unique run id.
	StartedAt time.Time
	Revision  string
	Price     decimal.Decimal
	Valuation decimal.Decimal
	Payments  []ProcessedPayment // in processing order.
}

// ProcessedPayment is the outcome of processing a single payment.
type ProcessedPayment struct {
	Payment      Payment
	TotalPaid    decimal.Decimal // payer's total according to the store.
	Transactions []Transaction
	Investment   *Investment  // nil when the payment is pure revenue.
	Attributions Attributions // table after the payment.
}

// Investments counts the payments that were, at least in part, investments.
func (r *RunReport) Investments() int {
	n := 0
	for _, p := range r.Payments {
		if p.Investment != nil {
			n++
		}
	}
	return n
}

// Total returns the sum of the amounts processed during the run.
func (r *RunReport) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Payments {
		total = total.Add(p.Payment.Amount)
	}
	return total
}
