package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var testAccounts = []model.Account{
	{ID: "clearing", Name: model.ClearingAccountName, Type: model.AccountTypeBank, IsPermanent: true},
	{ID: "bank", Name: "Operating Bank", Type: model.AccountTypeBank},
	{ID: "inv-a", Name: "Investor A", Type: model.AccountTypeEquity},
	{ID: "inv-b", Name: "Investor B", Type: model.AccountTypeEquity},
}

func transfer(id, from, to, amount string) model.Transaction {
	return model.Transaction{
		ID:            id,
		Type:          model.TxTransfer,
		Amount:        dec(amount),
		Date:          date(2025, 1, 15),
		AccountID:     from,
		FromAccountID: from,
		ToAccountID:   to,
		ProjectID:     "p1",
	}
}

var errInjected = errors.New("injected failure")

// flakyStore implements only the Store interface (no batch updater or
// deleter) and fails writes on demand, leaving partial state behind the
// way a non-transactional backend would.
type flakyStore struct {
	inner *Memory

	appendKeep int // legs written before an append fails; <0 disables
	failUpdate int // update call (1-based) that fails; 0 disables
	failDelete int // delete call (1-based) that fails; 0 disables
	updates    int
	deletes    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{inner: NewMemory(testAccounts, nil), appendKeep: -1}
}

func (f *flakyStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return f.inner.ListAccounts(ctx)
}

func (f *flakyStore) CreateAccount(ctx context.Context, a model.Account) error {
	return f.inner.CreateAccount(ctx, a)
}

func (f *flakyStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return f.inner.ListProjects(ctx)
}

func (f *flakyStore) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return f.inner.ListTransactions(ctx)
}

func (f *flakyStore) AppendTransactions(ctx context.Context, txs []model.Transaction) error {
	if f.appendKeep >= 0 {
		keep := f.appendKeep
		f.appendKeep = -1
		if err := f.inner.AppendTransactions(ctx, txs[:keep]); err != nil {
			return err
		}
		return errInjected
	}
	return f.inner.AppendTransactions(ctx, txs)
}

func (f *flakyStore) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	f.updates++
	if f.updates == f.failUpdate {
		return errInjected
	}
	return f.inner.UpdateTransaction(ctx, tx)
}

func (f *flakyStore) DeleteTransaction(ctx context.Context, id string) error {
	f.deletes++
	if f.deletes == f.failDelete {
		return errInjected
	}
	return f.inner.DeleteTransaction(ctx, id)
}
