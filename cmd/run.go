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

type runCmd struct {
	dryRun bool
	raw    bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "process the new payments into the ledger" }
func (*runCmd) Usage() string {
	return `moneyin run [-dry-run] [-raw]

  Splits every payment not yet in the transaction log among the current holders,
  and dilutes the attribution table when a payment is an investment.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "compute the run without writing to the ledger")
	f.BoolVar(&c.raw, "raw", false, "print the report as markdown")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	store := a.store
	if c.dryRun {
		if store, err = abe.Snapshot(a.store); err != nil {
			return a.fail("reading the ledger", err)
		}
	}

	report, err := a.processor(store).Run(ctx)
	// payments processed before a failure are committed, always report them.
	if report != nil {
		printMarkdown(renderer.RunMarkdown(report, a.cfg.Currency, a.cfg.Store.PercentPlaces), c.raw)
	}
	if err != nil {
		return a.fail("running", err)
	}
	return subcommands.ExitSuccess
}
