// Package config loads the moneyin configuration from a yaml file, .env files and ABE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// StoreConfig holds the record store configuration
type StoreConfig struct {
	Kind           string `mapstructure:"kind" yaml:"kind"`
	Root           string `mapstructure:"root" yaml:"root"`                         // file store directory
	DSN            string `mapstructure:"dsn" yaml:"dsn,omitempty"`                 // sql store data source name
	PercentPlaces  int32  `mapstructure:"percent_places" yaml:"percent_places"`     // decimals of persisted percentages
	PriceQuery     string `mapstructure:"price_query" yaml:"price_query,omitempty"` // JSONPath of the price in price.txt
	ValuationQuery string `mapstructure:"valuation_query" yaml:"valuation_query,omitempty"`
}

// Config holds the moneyin configuration
type Config struct {
	Debug     bool        `mapstructure:"debug" yaml:"debug"`
	SentryDSN string      `mapstructure:"sentry_dsn" yaml:"sentry_dsn,omitempty"`
	Currency  string      `mapstructure:"currency" yaml:"currency"`
	Revision  string      `mapstructure:"revision" yaml:"revision,omitempty"` // overrides the git revision stamp
	Store     StoreConfig `mapstructure:"store" yaml:"store"`
}

// Load loads the configuration.
//
// configFile is optional, when empty config.yaml is searched in the current directory and in abe/.
// envPath is the directory holding .env and .env.local files, they are loaded before reading the environment.
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper(configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("currency", "USD")
	v.SetDefault("store.kind", StoreFile)
	v.SetDefault("store.root", "abe")
	v.SetDefault("store.percent_places", 2)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// only an explicit config file is mandatory
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration consistency.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreFile:
		if c.Store.Root == "" {
			errs = append(errs, errors.New("store.root is required for a file store"))
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for a %s store", c.Store.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.kind %q, want one of %s, %s or %s", c.Store.Kind, StoreFile, StoreSQLite, StorePostgres))
	}
	if c.Store.PercentPlaces < 0 || c.Store.PercentPlaces > 10 {
		errs = append(errs, fmt.Errorf("store.percent_places must be between 0 and 10, got %d", c.Store.PercentPlaces))
	}
	if c.Currency == "" {
		errs = append(errs, errors.New("currency is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// YAML returns the configuration as yaml, secrets are masked.
func (c Config) YAML() (string, error) {
	if c.SentryDSN != "" {
		c.SentryDSN = "***"
	}
	if c.Store.DSN != "" && c.Store.Kind == StorePostgres {
		c.Store.DSN = "***"
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("abe/")
	}

	v.SetEnvPrefix("ABE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars of bound keys when there is no config file.
	for _, key := range []string{
		"debug",
		"sentry_dsn",
		"currency",
		"revision",
		"store.kind",
		"store.root",
		"store.dsn",
		"store.percent_places",
		"store.price_query",
		"store.valuation_query",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// loadEnv loads .env then .env.local from envPath (default current directory).
func loadEnv(envPath string) {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}
