package abe

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Unprocessed returns the payment ids in all that are not in recorded,
// in ascending order.
//
// The order matters: when a payer has several pending payments the dilution
// depends on which one is processed first.
func Unprocessed(all, recorded []string) []string {
	done := make(map[string]bool, len(recorded))
	for _, id := range recorded {
		done[id] = true
	}
	var pending []string
	for _, id := range all {
		if !done[id] {
			pending = append(pending, id)
		}
	}
	slices.Sort(pending)
	return slices.Compact(pending)
}

// TotalPaid returns the sum of all payments made by identity according to
// the store, processed or not.
//
// Because pending payments are included, a payer with several pending
// payments sees all of them in the total of the first one processed.
func TotalPaid(store PaymentReader, identity string) (decimal.Decimal, error) {
	ids, err := store.PaymentIDs()
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot list payments: %w", err)
	}
	total := decimal.Zero
	for _, id := range ids {
		p, err := store.Payment(id)
		if err != nil {
			return decimal.Zero, err
		}
		if p.Payer == identity {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
