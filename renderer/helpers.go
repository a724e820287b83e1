package renderer

import (
	"bytes"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// formatMoney formats an amount in currency, rounded to the currency's minor unit.
// An empty currency formats the plain decimal value.
func formatMoney(value decimal.Decimal, currency string) string {
	if currency == "" {
		return value.String()
	}
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, currency).Currency()
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
