package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/abe"
	"github.com/etnz/abe/renderer"
	"github.com/google/subcommands"
)

type transactionsCmd struct {
	payee  string
	source string
	raw    bool
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the transaction log" }
func (*transactionsCmd) Usage() string {
	return `moneyin transactions [-payee <email>] [-payment <id>] [-raw]

  Lists the transactions of the log, and the total received by each payee.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.payee, "payee", "", "only list the transactions to this payee")
	f.StringVar(&c.source, "payment", "", "only list the transactions of this payment")
	f.BoolVar(&c.raw, "raw", false, "print the log as markdown")
}

func (c *transactionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	txs, err := a.store.Transactions()
	if err != nil {
		return a.fail("reading transactions", err)
	}
	txs = slices.DeleteFunc(txs, func(tx abe.Transaction) bool {
		return (c.payee != "" && tx.Payee != c.payee) || (c.source != "" && tx.SourceID != c.source)
	})
	printMarkdown(renderer.TransactionsMarkdown(txs, a.cfg.Currency), c.raw)
	return subcommands.ExitSuccess
}
