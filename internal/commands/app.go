package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/auditlog"
	"github.com/cleared-dev/equity/internal/buildinfo"
	"github.com/cleared-dev/equity/internal/config"
	"github.com/cleared-dev/equity/internal/engine"
	"github.com/cleared-dev/equity/internal/gitops"
	"github.com/cleared-dev/equity/internal/obs"
	"github.com/cleared-dev/equity/internal/store"
	"github.com/cleared-dev/equity/internal/store/csvstore"
	"github.com/cleared-dev/equity/internal/store/pg"
)

// DataDir is where init puts the CSV store when store.dsn is empty.
const DataDir = "data"

// EnvFile is read from the data directory for environment overrides.
const EnvFile = ".env"

type options struct {
	dir          string
	logLevel     string
	printMetrics bool
}

// app is everything a command needs once the config is loaded.
type app struct {
	dir      string
	cfg      *config.Config
	store    store.Store
	engine   *engine.Engine
	registry *prometheus.Registry

	closeStore   func() error
	printMetrics bool
}

// run loads the app, runs fn and releases the store.
func (o *options) run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.open(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		runErr := fn(cmd, a, args)
		if err := a.close(cmd.ErrOrStderr()); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	}
}

func (o *options) open(ctx context.Context, stderr io.Writer) (*app, error) {
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(dir, EnvFile)); err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := obs.InitLogger(cfg.LogLevel, stderr)

	st, closeStore, err := openStore(ctx, dir, cfg.Store)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)
	buildinfo.Publish(metrics)

	eopts := engine.Options{
		ClearingAccountID:      cfg.SystemAccounts.Clearing,
		PayoutAccountID:        cfg.SystemAccounts.Payout,
		DistributionCategoryID: cfg.Categories.Distribution,
		RoundingUnit:           roundingUnit(cfg.Ledger.RoundingUnit),
		Logger:                 logger,
		Metrics:                metrics,
		Audit:                  auditlog.New(dir, cfg.Git.AuthorName),
	}
	if cfg.Git.AutoCommit && gitops.IsRepo(dir) {
		eopts.Committer = &gitops.Committer{
			Dir:         dir,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		}
	}

	return &app{
		dir:          dir,
		cfg:          cfg,
		store:        st,
		engine:       engine.New(st, eopts),
		registry:     registry,
		closeStore:   closeStore,
		printMetrics: o.printMetrics,
	}, nil
}

func (a *app) close(stderr io.Writer) error {
	if a.printMetrics {
		if err := writeMetrics(stderr, a.registry); err != nil {
			return err
		}
	}
	return a.closeStore()
}

// openStore opens the configured store. Postgres schemas are migrated on
// open.
func openStore(ctx context.Context, dir string, sc config.StoreConfig) (store.Store, func() error, error) {
	if sc.Driver == config.DriverPostgres {
		st, err := pg.Open(sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
		return st, st.Close, nil
	}

	st, err := csvstore.Open(csvDir(dir, sc.DSN))
	if err != nil {
		return nil, nil, err
	}
	return st, func() error { return nil }, nil
}

func csvDir(dir, dsn string) string {
	switch {
	case dsn == "":
		return filepath.Join(dir, DataDir)
	case filepath.IsAbs(dsn):
		return dsn
	}
	return filepath.Join(dir, dsn)
}

// roundingUnit maps the config's "0 disables" to the engine's "negative
// disables".
func roundingUnit(unit int64) decimal.Decimal {
	if unit == 0 {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(unit)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
