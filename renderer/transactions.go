package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/abe"
	"github.com/shopspring/decimal"
)

// TransactionsMarkdown renders the transaction log, and the total received by each payee.
func TransactionsMarkdown(txs []abe.Transaction, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transaction.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Payment | Payee | Amount | Revision |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|:---|")

	totals := make(map[string]decimal.Decimal)
	var payees []string
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			tx.CreatedAt.Format("2006-01-02"),
			tx.SourceID,
			tx.Payee,
			formatMoney(tx.Amount, currency),
			tx.Revision,
		)
		if _, ok := totals[tx.Payee]; !ok {
			payees = append(payees, tx.Payee)
		}
		totals[tx.Payee] = totals[tx.Payee].Add(tx.Amount)
	}

	fmt.Fprintf(&b, "\n## Totals\n\n")
	fmt.Fprintln(&b, "| Payee | Received |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, payee := range payees {
		fmt.Fprintf(&b, "| %s | %s |\n", payee, formatMoney(totals[payee], currency))
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", formatMoney(abe.TotalAmount(txs), currency))
	return b.String()
}
