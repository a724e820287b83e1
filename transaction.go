package abe

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one payee's portion of a single payment's revenue split.
//
// Transactions are append-only: once written they are never modified nor
// deleted.
type Transaction struct {
	Payee     string          // identity receiving the amount.
	Amount    decimal.Decimal // portion of the payment.
	SourceID  string          // id of the payment that produced it.
	Revision  string          // revision stamp of the ledger when it was produced.
	CreatedAt time.Time
}

// GenerateTransactions splits amount across the holders of attrs, one
// transaction per holder, in identity order.
//
// Amounts are exact decimal products, so they sum to amount whenever attrs
// sums to 1.
func GenerateTransactions(amount decimal.Decimal, attrs Attributions, sourceID, revision string, createdAt time.Time) []Transaction {
	txs := make([]Transaction, 0, len(attrs))
	for _, payee := range attrs.Holders() {
		txs = append(txs, Transaction{
			Payee:     payee,
			Amount:    amount.Mul(attrs[payee]),
			SourceID:  sourceID,
			Revision:  revision,
			CreatedAt: createdAt,
		})
	}
	return txs
}

// TotalAmount returns the sum of the transactions amounts.
func TotalAmount(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
