// Package pg stores the transaction log in PostgreSQL through the pgx
// database/sql driver. Multi-row writes run inside one SQL transaction.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/store"
)

// Schema creates the tables the store needs. It is safe to run repeatedly.
const Schema = `
create table if not exists accounts (
	id           text primary key,
	name         text not null,
	type         text not null,
	is_permanent boolean not null default false
);
create table if not exists projects (
	id   text primary key,
	name text not null
);
create table if not exists transactions (
	seq             bigserial,
	id              text primary key,
	type            text not null,
	date            date not null,
	amount          numeric(18,2) not null check (amount > 0),
	description     text not null default '',
	account_id      text,
	from_account_id text,
	to_account_id   text,
	project_id      text,
	category_id     text,
	contact_id      text,
	batch_id        text,
	purpose         text,
	leg_role        text
);
create index if not exists transactions_batch_idx on transactions (batch_id);
`

const txColumns = `id, type, date, amount, description, account_id, from_account_id, to_account_id,
	project_id, category_id, contact_id, batch_id, purpose, leg_role`

// Store is a store.Store backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var (
	_ store.Store        = (*Store)(nil)
	_ store.BatchUpdater = (*Store)(nil)
	_ store.BatchDeleter = (*Store)(nil)
)

// Open connects to the database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(15 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// ListAccounts returns every account ordered by id.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, type, is_permanent from accounts order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var a model.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.IsPermanent); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typ)
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

// CreateAccount adds an account.
func (s *Store) CreateAccount(ctx context.Context, acct model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`insert into accounts(id, name, type, is_permanent) values ($1,$2,$3,$4)`,
		acct.ID, acct.Name, string(acct.Type), acct.IsPermanent)
	if err != nil {
		return fmt.Errorf("creating account %s: %w", acct.ID, err)
	}
	return nil
}

// ListProjects returns every project ordered by id.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from projects order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateProject adds a project.
func (s *Store) CreateProject(ctx context.Context, p model.Project) error {
	if _, err := s.db.ExecContext(ctx, `insert into projects(id, name) values ($1,$2)`, p.ID, p.Name); err != nil {
		return fmt.Errorf("creating project %s: %w", p.ID, err)
	}
	return nil
}

// ListTransactions returns the log in insertion order.
func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `select `+txColumns+` from transactions order by seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// AppendTransactions inserts txs in one SQL transaction.
func (s *Store) AppendTransactions(ctx context.Context, txs []model.Transaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range txs {
			if _, err := tx.ExecContext(ctx, `insert into transactions(`+txColumns+`)
				values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`, args(t)...); err != nil {
				return fmt.Errorf("inserting %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// UpdateTransaction rewrites the row with t.ID.
func (s *Store) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	return s.UpdateTransactions(ctx, []model.Transaction{t})
}

// UpdateTransactions rewrites every row in one SQL transaction. A missing
// id fails with model.ErrNotFound and nothing is changed.
func (s *Store) UpdateTransactions(ctx context.Context, txs []model.Transaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range txs {
			res, err := tx.ExecContext(ctx, `update transactions set
				type=$2, date=$3, amount=$4, description=$5, account_id=$6, from_account_id=$7,
				to_account_id=$8, project_id=$9, category_id=$10, contact_id=$11, batch_id=$12,
				purpose=$13, leg_role=$14
				where id=$1`, args(t)...)
			if err != nil {
				return fmt.Errorf("updating %s: %w", t.ID, err)
			}
			if err := expectOne(res, t.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTransaction removes the row with id.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.DeleteTransactions(ctx, []string{id})
}

// DeleteTransactions removes every row in one SQL transaction. A missing
// id fails with model.ErrNotFound and nothing is removed.
func (s *Store) DeleteTransactions(ctx context.Context, ids []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `delete from transactions where id=$1`, id)
			if err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			if err := expectOne(res, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func args(t model.Transaction) []any {
	return []any{
		t.ID, string(t.Type), t.Date, t.Amount, t.Description,
		nullable(t.AccountID), nullable(t.FromAccountID), nullable(t.ToAccountID),
		nullable(t.ProjectID), nullable(t.CategoryID), nullable(t.ContactID),
		nullable(t.BatchID), nullable(string(t.Purpose)), nullable(string(t.LegRole)),
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var typ string
	var acct, from, to, project, category, contact, batch, purpose, role sql.NullString
	err := row.Scan(&t.ID, &typ, &t.Date, &t.Amount, &t.Description,
		&acct, &from, &to, &project, &category, &contact, &batch, &purpose, &role)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Type = model.TxType(typ)
	t.Date = t.Date.UTC()
	t.AccountID = acct.String
	t.FromAccountID = from.String
	t.ToAccountID = to.String
	t.ProjectID = project.String
	t.CategoryID = category.String
	t.ContactID = contact.String
	t.BatchID = batch.String
	t.Purpose = model.Purpose(purpose.String)
	t.LegRole = model.LegRole(role.String)
	return t, nil
}
