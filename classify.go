package abe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SharePrecision is the number of decimal digits of a computed share.
const SharePrecision = 16

// Investment is the part of a payment converted into an ownership share.
type Investment struct {
	Payer  string
	Amount decimal.Decimal // invested amount, always positive.
	Share  decimal.Decimal // Amount / valuation.
}

func (i Investment) String() string {
	return fmt.Sprintf("%s invested %s for a share of %s", i.Payer, i.Amount, i.Share)
}

// Classify decides whether a payment of incoming by payer is, at least in
// part, an investment.
//
// totalAfter is the payer's cumulative total including this payment. Below
// price, a payer's cumulative payments are pure revenue sharing; what goes
// over max(price, total before this payment) is invested at valuation.
//
// It returns false when nothing is invested, including the boundary where
// the invested amount is exactly zero, and when the share rounds to zero at
// SharePrecision digits.
func Classify(payer string, incoming, totalAfter, price, valuation decimal.Decimal) (Investment, bool) {
	totalBefore := totalAfter.Sub(incoming)
	invested := totalAfter.Sub(decimal.Max(price, totalBefore))
	if !invested.IsPositive() {
		return Investment{}, false
	}
	share := invested.DivRound(valuation, SharePrecision)
	if share.IsZero() {
		// too small to be represented as a share, it stays revenue.
		return Investment{}, false
	}
	return Investment{
		Payer:  payer,
		Amount: invested,
		Share:  share,
	}, true
}
