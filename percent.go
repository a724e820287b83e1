package abe

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// notDecimal matches everything that is not part of a signed decimal number.
var notDecimal = regexp.MustCompile(`[^0-9.-]`)

// parseDecimal parses a number the way humans write them in the ledger
// files: currency signs, thousand separators and percent signs are ignored,
// the sign is kept.
//
// Note that commas are decimal separators in some languages, they are not
// supported.
func parseDecimal(s string) (decimal.Decimal, error) {
	clean := notDecimal.ReplaceAllString(s, "")
	if clean == "" {
		return decimal.Zero, malformed("%q is not a number", strings.TrimSpace(s))
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, malformed("%q is not a number: %v", strings.TrimSpace(s), err)
	}
	return d, nil
}

// ParsePercent parses a percentage like "12.50%" into a share (0.125).
func ParsePercent(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Div(hundred), nil
}

// FormatPercent formats a share as a percentage with places decimals.
func FormatPercent(share decimal.Decimal, places int32) string {
	return share.Mul(hundred).StringFixed(places) + "%"
}
