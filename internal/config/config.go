package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/equity/internal/accounts"
)

// FileName is the config file inside a data directory.
const FileName = "equity.yaml"

// Store drivers.
const (
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
)

// Environment overrides.
const (
	EnvStoreDSN        = "EQUITY_STORE_DSN"
	EnvLogLevel        = "EQUITY_LOG_LEVEL"
	EnvClearingAccount = "EQUITY_CLEARING_ACCOUNT"
)

// Config represents the top-level equity.yaml configuration.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Currency       string               `yaml:"currency"`
	SystemAccounts SystemAccountsConfig `yaml:"system_accounts"`
	Categories     CategoriesConfig     `yaml:"categories"`
	Ledger         LedgerConfig         `yaml:"ledger"`
	Store          StoreConfig          `yaml:"store"`
	Git            GitConfig            `yaml:"git"`
	LogLevel       string               `yaml:"log_level"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// SystemAccountsConfig points at the accounts the engine routes through.
type SystemAccountsConfig struct {
	Clearing string `yaml:"clearing"`
	Payout   string `yaml:"payout"`
}

// CategoriesConfig names the categories with special meaning.
type CategoriesConfig struct {
	Distribution string `yaml:"distribution"`
}

// LedgerConfig controls ledger presentation.
type LedgerConfig struct {
	RoundingUnit int64 `yaml:"rounding_unit"` // 0 disables rounding
}

// StoreConfig selects the transaction store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"` // directory for csv, connection string for postgres
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an equity.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for a new CSV data directory.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{Name: businessName},
		Currency: "USD",
		SystemAccounts: SystemAccountsConfig{
			Clearing: accounts.ClearingID,
			Payout:   accounts.OperatingID,
		},
		Categories: CategoriesConfig{Distribution: "equity-distribution"},
		Ledger:     LedgerConfig{RoundingUnit: 100},
		Store:      StoreConfig{Driver: DriverCSV},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Equity Engine",
			AuthorEmail: "equity@cleared.dev",
		},
		LogLevel: "info",
	}
}

// ApplyEnv overrides cfg from the process environment and, for variables
// the environment does not set, from envFile. A missing envFile is ignored.
func ApplyEnv(cfg *Config, envFile string) error {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVals = vals
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}

	if v, ok := lookup(EnvStoreDSN); ok {
		cfg.Store.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvClearingAccount); ok {
		cfg.SystemAccounts.Clearing = v
	}
	return nil
}

// Validate checks the settings the engine cannot run without.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case DriverCSV:
	case DriverPostgres:
		if c.Store.DSN == "" {
			problems = append(problems, "store.dsn is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of csv, postgres", c.Store.Driver))
	}
	if len(c.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("currency %q is not an ISO 4217 code", c.Currency))
	}
	if c.Ledger.RoundingUnit < 0 {
		problems = append(problems, "ledger.rounding_unit must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
