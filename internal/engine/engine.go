// Package engine wires the planners to a transaction store: it reads a
// snapshot of the log, runs the pure computations over it and writes the
// resulting batches all-or-nothing.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/accounts"
	"github.com/cleared-dev/equity/internal/auditlog"
	"github.com/cleared-dev/equity/internal/balance"
	"github.com/cleared-dev/equity/internal/batch"
	"github.com/cleared-dev/equity/internal/distribution"
	"github.com/cleared-dev/equity/internal/ledgerview"
	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/obs"
	"github.com/cleared-dev/equity/internal/store"
)

// FinancialsSource supplies a project's available-to-distribute figure.
type FinancialsSource interface {
	GetProjectFinancials(ctx context.Context, projectID string) (model.ProjectFinancials, error)
}

// Auditor records committed events.
type Auditor interface {
	Record(e auditlog.Entry) error
}

// Committer snapshots the data after a write.
type Committer interface {
	Commit(ctx context.Context, message string) (string, error)
}

// Options configures an Engine. Zero values are usable.
type Options struct {
	ClearingAccountID      string
	PayoutAccountID        string
	DistributionCategoryID string
	// RoundingUnit for ledgers; zero means ledgerview.DefaultUnit, negative
	// disables rounding.
	RoundingUnit decimal.Decimal

	Logger     *slog.Logger
	Metrics    *obs.Metrics
	Audit      Auditor
	Committer  Committer
	Financials FinancialsSource
	Now        func() time.Time
}

// Engine runs the equity operations against one store.
type Engine struct {
	store  store.Store
	writer *store.Writer
	opts   Options
	log    *slog.Logger

	clearingMu sync.Mutex
	clearing   *model.Account
}

// New creates an Engine over st.
func New(st store.Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = obs.NewMetrics(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{store: st, opts: opts, log: opts.Logger}
	e.writer = store.NewWriter(st, opts.Logger)
	e.writer.OnRollback = opts.Metrics.Rollback
	return e
}

// Snapshot is one consistent read of the store.
type Snapshot struct {
	Accounts     *accounts.Service
	Projects     []model.Project
	Transactions []model.Transaction
}

// ProjectName returns the project's name, or its id if unknown.
func (s Snapshot) ProjectName(projectID string) string {
	for _, p := range s.Projects {
		if p.ID == projectID {
			return p.Name
		}
	}
	return projectID
}

// Snapshot reads accounts, projects and transactions.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	accts, err := e.store.ListAccounts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing accounts: %w", err)
	}
	projects, err := e.store.ListProjects(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing projects: %w", err)
	}
	txs, err := e.store.ListTransactions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing transactions: %w", err)
	}
	return Snapshot{
		Accounts:     accounts.NewService(accts, e.opts.ClearingAccountID),
		Projects:     projects,
		Transactions: txs,
	}, nil
}

// Balances aggregates the whole log.
func (e *Engine) Balances(ctx context.Context) (balance.Snapshot, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return balance.Snapshot{}, err
	}
	return balance.Aggregate(snap.Transactions, snap.Accounts, snap.Projects), nil
}

// Ledger builds the ledger rows for scope.
func (e *Engine) Ledger(ctx context.Context, scope ledgerview.Scope) ([]ledgerview.Row, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	b := ledgerview.NewBuilder(snap.Accounts, snap.Projects)
	switch {
	case e.opts.RoundingUnit.IsNegative():
		b.Unit = decimal.Zero
	case e.opts.RoundingUnit.IsPositive():
		b.Unit = e.opts.RoundingUnit
	}
	return b.Build(snap.Transactions, scope), nil
}

// ProjectFinancials returns what projectID can distribute, from the
// configured source or computed from the log.
func (e *Engine) ProjectFinancials(ctx context.Context, projectID string) (model.ProjectFinancials, error) {
	if e.opts.Financials != nil {
		return e.opts.Financials.GetProjectFinancials(ctx, projectID)
	}
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return model.ProjectFinancials{}, err
	}
	return distribution.Financials(projectID, snap.Transactions, snap.Accounts, e.opts.DistributionCategoryID), nil
}

// ResolveBatch finds txID's batch. Ambiguous batches are logged and
// returned with the error.
func (e *Engine) ResolveBatch(ctx context.Context, txID string) (batch.Batch, error) {
	txs, err := e.store.ListTransactions(ctx)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("listing transactions: %w", err)
	}
	b, err := batch.Resolve(txID, txs)
	var amb *model.AmbiguousBatchError
	if errors.As(err, &amb) {
		e.log.Warn("batch matches no known shape", "batch_id", amb.BatchID, "legs", amb.Legs, "tx_id", txID)
	}
	return b, err
}

// clearingAccount resolves the clearing account once, creating it if the
// store has none.
func (e *Engine) clearingAccount(ctx context.Context) (model.Account, error) {
	e.clearingMu.Lock()
	defer e.clearingMu.Unlock()

	if e.clearing != nil {
		return *e.clearing, nil
	}
	acct, err := accounts.EnsureClearing(ctx, e.store, e.opts.ClearingAccountID, e.log)
	if err != nil {
		return model.Account{}, err
	}
	e.clearing = &acct
	return acct, nil
}

// commit appends legs as one batch and records the outcome.
func (e *Engine) commit(ctx context.Context, kind string, legs []model.Transaction, entry auditlog.Entry) ([]model.Transaction, error) {
	written, replayed, err := e.writer.Append(ctx, legs)
	if err != nil {
		e.opts.Metrics.Commit(kind, obs.StatusError, len(legs))
		e.log.Error("commit failed", "kind", kind, "batch_id", entry.BatchID, "error", err)
		return nil, err
	}
	if replayed {
		e.opts.Metrics.Commit(kind, obs.StatusReplayed, 0)
		return written, nil
	}

	e.opts.Metrics.Commit(kind, obs.StatusOK, len(written))
	e.log.Info("committed", "kind", kind, "batch_id", entry.BatchID, "legs", len(written))
	for _, t := range written {
		entry.TransactionIDs = append(entry.TransactionIDs, t.ID)
	}
	e.afterWrite(ctx, entry)
	return written, nil
}

// afterWrite records the audit entry and snapshots the data. Failures here
// are logged; the write itself already succeeded.
func (e *Engine) afterWrite(ctx context.Context, entry auditlog.Entry) {
	if e.opts.Audit != nil {
		if entry.Timestamp.IsZero() {
			entry.Timestamp = e.opts.Now()
		}
		if err := e.opts.Audit.Record(entry); err != nil {
			e.log.Error("writing audit log", "action", entry.Action, "error", err)
		}
	}
	if e.opts.Committer != nil {
		msg := entry.Action + ": " + entry.Details
		hash, err := e.opts.Committer.Commit(ctx, msg)
		if err != nil {
			e.log.Error("committing data directory", "error", err)
			return
		}
		if hash != "" {
			e.log.Debug("data directory committed", "commit", hash)
		}
	}
}
