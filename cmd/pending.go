package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/abe"
	"github.com/etnz/abe/renderer"
	"github.com/google/subcommands"
)

type pendingCmd struct {
	raw bool
}

func (*pendingCmd) Name() string     { return "pending" }
func (*pendingCmd) Synopsis() string { return "list the payments waiting to be processed" }
func (*pendingCmd) Usage() string {
	return `moneyin pending [-raw]

  Lists the payments the next run will process, in processing order,
  and the investment left pending by a failed run if any.
`
}

func (c *pendingCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print the list as markdown")
}

func (c *pendingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	all, err := a.store.PaymentIDs()
	if err != nil {
		return a.fail("listing payments", err)
	}
	recorded, err := a.store.RecordedSourceIDs()
	if err != nil {
		return a.fail("listing recorded payments", err)
	}
	var payments []abe.Payment
	for _, id := range abe.Unprocessed(all, recorded) {
		p, err := a.store.Payment(id)
		if err != nil {
			return a.fail("reading payment", &abe.PaymentError{ID: id, Err: err})
		}
		payments = append(payments, p)
	}
	pending, err := a.store.PendingInvestment()
	if err != nil {
		return a.fail("reading pending investment", err)
	}
	printMarkdown(renderer.PendingMarkdown(payments, pending, a.cfg.Currency, a.cfg.Store.PercentPlaces), c.raw)
	return subcommands.ExitSuccess
}
