package cmd

import (
	"flag"

	"github.com/etnz/abe/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion tree of the moneyin command,
// built from the flags of the global flag set and of every subcommand.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	root.Flags["config"] = predict.Files("*.yaml")
	root.Flags["env"] = predict.Dirs("*")

	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: predictFlags(fs)}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "readme", "*"))
	}
	// registered by subcommands itself.
	root.Sub["help"] = &complete.Command{Args: predict.Set(commandNames())}
	root.Sub["flags"] = &complete.Command{Args: predict.Set(commandNames())}
	return root
}

// predictFlags predicts nothing after boolean flags, and something after the others.
func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

func commandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}
