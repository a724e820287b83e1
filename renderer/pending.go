package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/abe"
)

// PendingMarkdown renders the payments waiting to be processed, and the
// investment left pending by a failed run if any.
func PendingMarkdown(payments []abe.Payment, pending *abe.PendingInvestment, currency string, places int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pending\n\n")

	if pending != nil {
		fmt.Fprintf(&b, "> **Warning**: the investment of payment `%s` could not be applied", pending.SourceID)
		if pending.Reason != "" {
			fmt.Fprintf(&b, " (%s)", pending.Reason)
		}
		fmt.Fprintf(&b, ".\n> %s invested %s for a share of %s. Run `moneyin resolve` to apply it.\n\n",
			pending.Payer,
			formatMoney(pending.Amount, currency),
			abe.FormatPercent(pending.Share, places),
		)
	}

	if len(payments) == 0 {
		fmt.Fprintln(&b, "No payment to process.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Payment | Name | Payer | Amount |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|")
	for _, p := range payments {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.ID, p.Name, p.Payer, formatMoney(p.Amount, currency))
	}
	return b.String()
}
