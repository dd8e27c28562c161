package engine

import (
	"context"
	"fmt"

	"github.com/cleared-dev/equity/internal/accounts"
	"github.com/cleared-dev/equity/internal/auditlog"
	"github.com/cleared-dev/equity/internal/batch"
	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/obs"
)

const (
	kindEdit   = "edit"
	kindDelete = "delete"
	kindRecord = "record"
)

// EditBatch rewrites every leg of txID's batch with fields.
func (e *Engine) EditBatch(ctx context.Context, txID string, fields batch.EditFields) ([]model.Transaction, error) {
	b, err := e.ResolveBatch(ctx, txID)
	if err != nil {
		return nil, err
	}
	if fields.InvestorID != nil {
		accts, err := e.store.ListAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing accounts: %w", err)
		}
		if !accounts.NewService(accts, e.opts.ClearingAccountID).IsEquity(*fields.InvestorID) {
			return nil, model.Invalid("investor", "%s is not an equity account", *fields.InvestorID)
		}
	}

	legs, err := batch.CommitEdit(b, fields)
	if err != nil {
		return nil, err
	}
	if err := e.writer.Replace(ctx, legs); err != nil {
		e.opts.Metrics.Commit(kindEdit, obs.StatusError, len(legs))
		return nil, err
	}
	e.opts.Metrics.Commit(kindEdit, obs.StatusOK, len(legs))

	entry := auditlog.Entry{
		Action:  auditlog.ActionEditBatch,
		BatchID: b.Main.BatchID,
		Details: fmt.Sprintf("%s edit of %s", b.Mode, txID),
	}
	for _, l := range legs {
		entry.TransactionIDs = append(entry.TransactionIDs, l.ID)
	}
	e.log.Info("batch edited", "mode", string(b.Mode), "tx_id", txID, "legs", len(legs))
	e.afterWrite(ctx, entry)
	return legs, nil
}

// DeleteGroup deletes txID together with every transaction in its batch.
// It returns the deleted ids.
func (e *Engine) DeleteGroup(ctx context.Context, txID string) ([]string, error) {
	txs, err := e.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	var main *model.Transaction
	for i := range txs {
		if txs[i].ID == txID {
			main = &txs[i]
			break
		}
	}
	if main == nil {
		return nil, fmt.Errorf("transaction %s: %w", txID, model.ErrNotFound)
	}

	members := batch.Members(*main, txs)
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	if err := e.writer.Delete(ctx, ids); err != nil {
		e.opts.Metrics.Commit(kindDelete, obs.StatusError, len(ids))
		return nil, err
	}
	e.opts.Metrics.Commit(kindDelete, obs.StatusOK, len(ids))
	e.log.Info("deleted", "tx_id", txID, "batch_id", main.BatchID, "legs", len(ids))
	e.afterWrite(ctx, auditlog.Entry{
		Action:         auditlog.ActionDelete,
		BatchID:        main.BatchID,
		TransactionIDs: ids,
		Details:        fmt.Sprintf("delete %s with %d legs", txID, len(ids)),
	})
	return ids, nil
}

// Record appends a single transaction, assigning an id when it has none.
func (e *Engine) Record(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if tx.ID == "" {
		tx.ID = id.New()
	}
	if tx.IsTransfer() && tx.AccountID == "" {
		tx.AccountID = tx.FromAccountID
	}
	written, err := e.commit(ctx, kindRecord, []model.Transaction{tx}, auditlog.Entry{
		Action:  auditlog.ActionRecord,
		Details: fmt.Sprintf("%s %s %s", tx.Type, tx.Amount.StringFixed(2), tx.Description),
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return written[0], nil
}

