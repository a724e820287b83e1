// Package cmd implements the moneyin command line application.
package cmd

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/abe"
	"github.com/etnz/abe/config"
	"github.com/etnz/abe/logger"
	"github.com/etnz/abe/sqlstore"
	"github.com/google/subcommands"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Commands are the moneyin subcommands.
var Commands = []subcommands.Command{
	&runCmd{},
	&attributionsCmd{},
	&transactionsCmd{},
	&pendingCmd{},
	&resolveCmd{},
	&configCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file, config.yaml in . or abe/ by default")
var envPath = flag.String("env", ".", "Folder of the .env and .env.local files")

// app is what a subcommand needs to work on the ledger.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store abe.Store
	db    *sql.DB // nil for a file store
}

// openApp loads the configuration, the logger and the store.
func openApp() (*app, error) {
	cfg, err := config.Load(*configFile, *envPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"store": cfg.Store.Kind},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore() error {
	s := a.cfg.Store
	var driver string
	switch s.Kind {
	case config.StoreFile:
		a.store = abe.NewFileStore(s.Root,
			abe.WithPercentPlaces(s.PercentPlaces),
			abe.WithPriceQuery(s.PriceQuery),
			abe.WithValuationQuery(s.ValuationQuery),
		)
		return nil
	case config.StoreSQLite:
		driver = "sqlite"
	case config.StorePostgres:
		driver = "postgres"
	default:
		return fmt.Errorf("unknown store kind %q", s.Kind)
	}

	db, err := sql.Open(driver, s.DSN)
	if err != nil {
		return fmt.Errorf("cannot open %s database: %w", s.Kind, err)
	}
	a.db = db
	// shares are kept with the precision of the percentages.
	store := sqlstore.New(db, sqlstore.WithSharePlaces(s.PercentPlaces+2))
	if err := store.Init(); err != nil {
		return fmt.Errorf("cannot initialize %s database: %w", s.Kind, err)
	}
	a.store = store
	return nil
}

// revision returns the source of the revision stamp: the configured one, or
// the git revision of the ledger.
func (a *app) revision() abe.RevisionFunc {
	if a.cfg.Revision != "" {
		return abe.StaticRevision(a.cfg.Revision)
	}
	if fs, ok := a.store.(*abe.FileStore); ok {
		return abe.GitRevision(fs.Root())
	}
	return abe.GitRevision(".")
}

func (a *app) processor(store abe.Store) *abe.Processor {
	return abe.NewProcessor(store,
		abe.WithRevision(a.revision()),
		abe.WithLogger(a.log.Logger),
	)
}

// fail reports err and returns the failure exit status.
func (a *app) fail(msg string, err error) subcommands.ExitStatus {
	a.log.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", msg, err)
	return subcommands.ExitFailure
}

// Close releases the database and flushes the logs.
func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	a.log.Close(2 * time.Second)
}

// printMarkdown prints md rendered for the terminal, or as is when raw.
func printMarkdown(md string, raw bool) {
	if raw {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
