package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/equity/internal/model"
)

// Writer issues multi-leg writes against a Store so that a batch lands
// completely or not at all. Stores that cannot write atomically get
// compensating writes on failure.
type Writer struct {
	Store  Store
	Logger *slog.Logger
	// OnRollback is called after compensating writes were issued for op.
	OnRollback func(op string)
}

// NewWriter creates a Writer.
func NewWriter(st Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Store: st, Logger: logger}
}

type accountSet map[string]bool

func (s accountSet) Exists(id string) bool { return s[id] }

func (w *Writer) validate(ctx context.Context, legs []model.Transaction) error {
	accts, err := w.Store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}
	known := make(accountSet, len(accts))
	for _, a := range accts {
		known[a.ID] = true
	}
	if verrs := ValidateTransactions(legs, known); len(verrs) > 0 {
		return validationFailure(verrs)
	}
	return nil
}

// Append writes a new batch with a single append-many call. Legs whose ids
// are already in the store are treated as a replayed commit: when every leg
// is present with the same content the stored legs are returned with
// replayed set and nothing is written. A present leg whose content differs
// fails the append.
func (w *Writer) Append(ctx context.Context, legs []model.Transaction) (stored []model.Transaction, replayed bool, err error) {
	if len(legs) == 0 {
		return nil, false, model.Invalid("batch", "no legs to write")
	}
	batchID := legs[0].BatchID

	if err := w.validate(ctx, legs); err != nil {
		return nil, false, err
	}

	existing, err := w.Store.ListTransactions(ctx)
	if err != nil {
		return nil, false, &model.StoreWriteError{Op: "append", BatchID: batchID, Err: err}
	}
	byID := indexByID(existing)
	var present []model.Transaction
	for _, leg := range legs {
		if t, ok := byID[leg.ID]; ok {
			present = append(present, t)
		}
	}
	switch {
	case len(present) == len(legs):
		for i, leg := range legs {
			if !sameLeg(present[i], leg) {
				return nil, false, &model.StoreWriteError{
					Op:      "append",
					BatchID: batchID,
					Err:     fmt.Errorf("leg %s already exists with different content; retry key reused", leg.ID),
				}
			}
		}
		w.Logger.Info("batch already committed", "batch_id", batchID, "legs", len(legs))
		return present, true, nil
	case len(present) > 0:
		return nil, false, &model.StoreWriteError{
			Op:      "append",
			BatchID: batchID,
			Err:     fmt.Errorf("%d of %d legs already present", len(present), len(legs)),
		}
	}

	if err := w.Store.AppendTransactions(ctx, legs); err != nil {
		w.removeWritten(ctx, legs)
		return nil, false, &model.StoreWriteError{Op: "append", BatchID: batchID, Err: err}
	}
	return legs, false, nil
}

// removeWritten deletes whatever part of a failed append reached the store.
func (w *Writer) removeWritten(ctx context.Context, legs []model.Transaction) {
	ctx = context.WithoutCancel(ctx)
	current, err := w.Store.ListTransactions(ctx)
	if err != nil {
		w.Logger.Error("rollback: listing transactions", "error", err)
		return
	}
	stored := indexByID(current)
	var ids []string
	for _, leg := range legs {
		if _, ok := stored[leg.ID]; ok {
			ids = append(ids, leg.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if err := w.Store.DeleteTransaction(ctx, id); err != nil {
			w.Logger.Error("rollback: deleting leg", "tx_id", id, "error", err)
		}
	}
	w.Logger.Warn("rolled back partial append", "batch_id", legs[0].BatchID, "legs", len(ids))
	w.rolledBack("append")
}

// Replace rewrites existing transactions in place. All ids must exist.
func (w *Writer) Replace(ctx context.Context, legs []model.Transaction) error {
	if len(legs) == 0 {
		return model.Invalid("batch", "no legs to write")
	}
	batchID := legs[0].BatchID

	if err := w.validate(ctx, legs); err != nil {
		return err
	}

	if bu, ok := w.Store.(BatchUpdater); ok {
		if err := bu.UpdateTransactions(ctx, legs); err != nil {
			return &model.StoreWriteError{Op: "update", BatchID: batchID, Err: err}
		}
		return nil
	}

	existing, err := w.Store.ListTransactions(ctx)
	if err != nil {
		return &model.StoreWriteError{Op: "update", BatchID: batchID, Err: err}
	}
	originals := indexByID(existing)
	for _, leg := range legs {
		if _, ok := originals[leg.ID]; !ok {
			return &model.StoreWriteError{Op: "update", BatchID: batchID, Err: fmt.Errorf("transaction %s: %w", leg.ID, model.ErrNotFound)}
		}
	}

	for i, leg := range legs {
		if err := w.Store.UpdateTransaction(ctx, leg); err != nil {
			rctx := context.WithoutCancel(ctx)
			for _, done := range legs[:i] {
				if rerr := w.Store.UpdateTransaction(rctx, originals[done.ID]); rerr != nil {
					w.Logger.Error("rollback: restoring leg", "tx_id", done.ID, "error", rerr)
				}
			}
			if i > 0 {
				w.Logger.Warn("rolled back partial update", "batch_id", batchID, "legs", i)
				w.rolledBack("update")
			}
			return &model.StoreWriteError{Op: "update", BatchID: batchID, Err: err}
		}
	}
	return nil
}

// Delete removes every listed transaction or none of them.
func (w *Writer) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return model.Invalid("batch", "no transactions to delete")
	}

	if bd, ok := w.Store.(BatchDeleter); ok {
		if err := bd.DeleteTransactions(ctx, ids); err != nil {
			return &model.StoreWriteError{Op: "delete", Err: err}
		}
		return nil
	}

	existing, err := w.Store.ListTransactions(ctx)
	if err != nil {
		return &model.StoreWriteError{Op: "delete", Err: err}
	}
	originals := indexByID(existing)

	for i, id := range ids {
		if err := w.Store.DeleteTransaction(ctx, id); err != nil {
			if i > 0 {
				restore := make([]model.Transaction, 0, i)
				for _, done := range ids[:i] {
					restore = append(restore, originals[done])
				}
				if rerr := w.Store.AppendTransactions(context.WithoutCancel(ctx), restore); rerr != nil {
					w.Logger.Error("rollback: restoring deleted legs", "error", rerr)
				}
				w.Logger.Warn("rolled back partial delete", "legs", i)
				w.rolledBack("delete")
			}
			return &model.StoreWriteError{Op: "delete", Err: err}
		}
	}
	return nil
}

func (w *Writer) rolledBack(op string) {
	if w.OnRollback != nil {
		w.OnRollback(op)
	}
}

func indexByID(txs []model.Transaction) map[string]model.Transaction {
	m := make(map[string]model.Transaction, len(txs))
	for _, t := range txs {
		m[t.ID] = t
	}
	return m
}

// sameLeg compares the economic content of two legs. The date is left out
// so a retry on a later day still replays.
func sameLeg(a, b model.Transaction) bool {
	return a.Type == b.Type &&
		a.Amount.Equal(b.Amount) &&
		a.AccountID == b.AccountID &&
		a.FromAccountID == b.FromAccountID &&
		a.ToAccountID == b.ToAccountID &&
		a.ProjectID == b.ProjectID &&
		a.Description == b.Description &&
		a.BatchID == b.BatchID &&
		a.Purpose == b.Purpose &&
		a.LegRole == b.LegRole
}
