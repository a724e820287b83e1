package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/abe/renderer"
	"github.com/google/subcommands"
)

type attributionsCmd struct {
	raw bool
}

func (*attributionsCmd) Name() string     { return "attributions" }
func (*attributionsCmd) Synopsis() string { return "display the attribution table" }
func (*attributionsCmd) Usage() string {
	return `moneyin attributions [-raw]

  Displays the share of every holder, largest first.
`
}

func (c *attributionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print the table as markdown")
}

func (c *attributionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	attrs, err := a.store.Attributions()
	if err != nil {
		return a.fail("reading attributions", err)
	}
	if err := attrs.Validate(); err != nil {
		// still worth displaying
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	printMarkdown(renderer.AttributionsMarkdown(attrs, a.cfg.Store.PercentPlaces), c.raw)
	return subcommands.ExitSuccess
}
