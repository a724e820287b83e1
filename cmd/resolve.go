package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/abe"
	"github.com/google/subcommands"
)

type resolveCmd struct{}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "apply the investment left pending by a failed run" }
func (*resolveCmd) Usage() string {
	return `moneyin resolve

  When a run fails to write the attribution table after recording the
  transactions of an investment, the investment is kept pending and no
  other run can start. resolve applies it, provided the attribution table
  has not changed since.
`
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {}

func (c *resolveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	pending, err := a.processor(a.store).Resolve()
	if err != nil {
		return a.fail("resolving", err)
	}
	if pending == nil {
		fmt.Println("No pending investment.")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Applied the investment of payment %s: %s now holds %s more.\n",
		pending.SourceID, pending.Payer, abe.FormatPercent(pending.Share, a.cfg.Store.PercentPlaces))
	return subcommands.ExitSuccess
}
