// Command moneyin keeps the equity-attribution ledger of an organization:
// it splits incoming payments among the holders, and dilutes the holders
// when a payment is an investment.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/abe/cmd"
	"github.com/google/subcommands"
)

func main() {
	// exits when called for shell completion, COMP_INSTALL=1 installs it.
	cmd.Completion().Complete("moneyin")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// a run stops between two payments on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
