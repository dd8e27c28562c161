// Package store defines the transaction store the equity engine reads its
// snapshot from and writes batches to, plus an in-memory implementation.
package store

import (
	"context"

	"github.com/cleared-dev/equity/internal/model"
)

// Store is the transaction log and the reference data it points at.
type Store interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	CreateAccount(ctx context.Context, acct model.Account) error
	ListProjects(ctx context.Context) ([]model.Project, error)
	// ListTransactions returns the log in insertion order.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	// AppendTransactions writes all transactions or none of them.
	AppendTransactions(ctx context.Context, txs []model.Transaction) error
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// BatchUpdater is implemented by stores that can replace several
// transactions atomically.
type BatchUpdater interface {
	UpdateTransactions(ctx context.Context, txs []model.Transaction) error
}

// BatchDeleter is implemented by stores that can delete several
// transactions atomically.
type BatchDeleter interface {
	DeleteTransactions(ctx context.Context, ids []string) error
}
