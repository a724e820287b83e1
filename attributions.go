package abe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/gowebpki/jcs"
	"github.com/shopspring/decimal"
)

// ShareTolerance is the maximum distance to 1 accepted for the sum of an
// attribution table when it is read.
var ShareTolerance = decimal.New(1, -6)

// Attributions maps an identity to its share of ownership, in [0,1].
//
// A valid table sums to 1. Tables are never patched in place: operations
// return a new table that replaces the old one as a whole.
type Attributions map[string]decimal.Decimal

// Holders returns the identities of the table in ascending order.
func (a Attributions) Holders() []string {
	return slices.Sorted(maps.Keys(a))
}

// Sum returns the sum of all shares.
func (a Attributions) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, share := range a {
		sum = sum.Add(share)
	}
	return sum
}

// Validate checks that every share is in [0,1] and that shares sum to 1
// within ShareTolerance. It returns an ErrCorruptLedger otherwise.
func (a Attributions) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: attribution table is empty", ErrCorruptLedger)
	}
	for _, id := range a.Holders() {
		share := a[id]
		if share.IsNegative() || share.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: share of %q is out of range: %s", ErrCorruptLedger, id, share)
		}
	}
	sum := a.Sum()
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(ShareTolerance) {
		return fmt.Errorf("%w: attribution shares sum to %s", ErrCorruptLedger, sum)
	}
	return nil
}

// Clone returns a copy of the table.
func (a Attributions) Clone() Attributions {
	return maps.Clone(a)
}

// Dilute returns the table after the investment inv: every existing share
// is scaled by 1-inv.Share, then inv.Share is added to the investor's share,
// creating the entry if needed.
//
// In exact arithmetic the result sums to 1 whenever a does.
func (a Attributions) Dilute(inv Investment) Attributions {
	retained := decimal.NewFromInt(1).Sub(inv.Share)
	next := make(Attributions, len(a)+1)
	for id, share := range a {
		next[id] = share.Mul(retained)
	}
	next[inv.Payer] = next[inv.Payer].Add(inv.Share)
	return next
}

// Round returns the table with each share rounded to places decimal digits.
//
// The rounding residual is given to the largest holder (the first one in
// identity order on a tie), so that a table summing to 1 still sums to
// exactly 1 at the given precision.
func (a Attributions) Round(places int32) Attributions {
	rounded := make(Attributions, len(a))
	var largest string
	for _, id := range a.Holders() {
		rounded[id] = a[id].Round(places)
		if largest == "" || a[id].GreaterThan(a[largest]) {
			largest = id
		}
	}
	if largest == "" {
		return rounded
	}
	residual := decimal.NewFromInt(1).Sub(rounded.Sum())
	rounded[largest] = rounded[largest].Add(residual)
	return rounded
}

// Equal reports whether both tables hold the same identities with equal shares.
func (a Attributions) Equal(b Attributions) bool {
	if len(a) != len(b) {
		return false
	}
	for id, share := range a {
		other, ok := b[id]
		if !ok || !share.Equal(other) {
			return false
		}
	}
	return true
}

// Digest returns a version identifier of the table: the hex encoded sha256
// of its canonical JSON form (RFC 8785).
func (a Attributions) Digest() (string, error) {
	obj := make(map[string]string, len(a))
	for id, share := range a {
		// normalized so that 0.50 and 0.5 share the same digest.
		obj[id] = share.String()
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("cannot marshal attributions: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("cannot canonicalize attributions: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
