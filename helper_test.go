package abe

import (
	"time"

	"github.com/shopspring/decimal"
)

// D is a helper for tests to create a decimal from a const string.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixedClock is a clock for tests.
func fixedClock() time.Time { return time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC) }

// pay is a helper to create a payment.
func pay(id, payer, amount string) Payment {
	return Payment{ID: id, Name: payer, Payer: payer, Amount: D(amount)}
}

// newTestStore creates a store with price=100, valuation=1000, and a@x.com holding everything.
func newTestStore(payments ...Payment) *MemStore {
	m := NewMemStore(D("100"), D("1000"), Attributions{"a@x.com": D("1")})
	for _, p := range payments {
		m.AddPayment(p)
	}
	return m
}
