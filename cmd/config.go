package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/abe/config"
	"github.com/google/subcommands"
)

type configCmd struct{}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "print the effective configuration" }
func (*configCmd) Usage() string {
	return `moneyin config

  Prints the configuration resulting from the config file, the .env files
  and the ABE_ environment variables, as yaml. Secrets are masked.
`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {}

func (c *configCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := cfg.YAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
