package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/abe"
)

// RunMarkdown renders the report of a run.
func RunMarkdown(r *abe.RunReport, currency string, places int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", r.ID)
	fmt.Fprintf(&b, "- Revision: `%s`\n", r.Revision)
	fmt.Fprintf(&b, "- Price: %s\n", formatMoney(r.Price, currency))
	fmt.Fprintf(&b, "- Valuation: %s\n", formatMoney(r.Valuation, currency))
	fmt.Fprintf(&b, "- Payments: %d, for a total of %s\n", len(r.Payments), formatMoney(r.Total(), currency))
	fmt.Fprintf(&b, "- Investments: %d\n\n", r.Investments())

	if len(r.Payments) == 0 {
		fmt.Fprintln(&b, "No payment to process.")
		return b.String()
	}

	fmt.Fprintf(&b, "## Payments\n\n")
	fmt.Fprintln(&b, "| Payment | Payer | Amount | Total Paid | Payees | Invested | Share |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")
	for _, p := range r.Payments {
		invested, share := "-", "-"
		if p.Investment != nil {
			invested = formatMoney(p.Investment.Amount, currency)
			share = abe.FormatPercent(p.Investment.Share, places)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s |\n",
			p.Payment.ID,
			p.Payment.Payer,
			formatMoney(p.Payment.Amount, currency),
			formatMoney(p.TotalPaid, currency),
			len(p.Transactions),
			invested,
			share,
		)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		if r.Investments() == 0 {
			return false
		}
		last := r.Payments[len(r.Payments)-1]
		fmt.Fprintln(w)
		fmt.Fprint(w, strings.Replace(AttributionsMarkdown(last.Attributions, places), "# Attributions", "## Attributions", 1))
		return true
	})
	return b.String()
}
