// Package csvstore keeps the transaction log in a directory of CSV files.
// Every write rewrites the affected file through a temp file and a rename,
// so a multi-row write is all or nothing.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cleared-dev/equity/internal/accounts"
	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/store"
)

// File names inside a data directory.
const (
	AccountsFile     = "accounts.csv"
	ProjectsFile     = "projects.csv"
	TransactionsFile = "transactions.csv"
)

// Store implements store.Store over a data directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

var (
	_ store.Store        = (*Store)(nil)
	_ store.BatchUpdater = (*Store)(nil)
	_ store.BatchDeleter = (*Store)(nil)
)

// Open returns a Store for an existing data directory.
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening data dir: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Init creates the data files in dir with the given accounts and projects.
// Existing files are left untouched.
func Init(dir string, accts []model.Account, projects []model.Project) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	s := &Store{dir: dir}

	seed := []struct {
		name  string
		write func(io.Writer) error
	}{
		{AccountsFile, func(w io.Writer) error { return accounts.WriteAccounts(w, accts) }},
		{ProjectsFile, func(w io.Writer) error { return WriteProjects(w, projects) }},
		{TransactionsFile, func(w io.Writer) error { return WriteTransactions(w, nil) }},
	}
	for _, f := range seed {
		if _, err := os.Stat(s.path(f.name)); err == nil {
			continue
		}
		if err := s.replaceFile(f.name, f.write); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) ListAccounts(context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts()
}

func (s *Store) CreateAccount(_ context.Context, acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accts, err := s.readAccounts()
	if err != nil {
		return err
	}
	for _, a := range accts {
		if a.ID == acct.ID {
			return fmt.Errorf("account %s already exists", acct.ID)
		}
	}
	accts = append(accts, acct)
	return s.replaceFile(AccountsFile, func(w io.Writer) error { return accounts.WriteAccounts(w, accts) })
}

func (s *Store) ListProjects(context.Context) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readProjects()
}

// CreateProject adds a project.
func (s *Store) CreateProject(_ context.Context, p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.readProjects()
	if err != nil {
		return err
	}
	for _, existing := range projects {
		if existing.ID == p.ID {
			return fmt.Errorf("project %s already exists", p.ID)
		}
	}
	projects = append(projects, p)
	return s.replaceFile(ProjectsFile, func(w io.Writer) error { return WriteProjects(w, projects) })
}

func (s *Store) ListTransactions(context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTransactions()
}

func (s *Store) AppendTransactions(_ context.Context, txs []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readTransactions()
	if err != nil {
		return err
	}
	for _, t := range txs {
		if slices.ContainsFunc(current, func(c model.Transaction) bool { return c.ID == t.ID }) {
			return fmt.Errorf("duplicate transaction id %s", t.ID)
		}
		current = append(current, t)
	}
	return s.writeTransactions(current)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	return s.UpdateTransactions(ctx, []model.Transaction{tx})
}

func (s *Store) UpdateTransactions(_ context.Context, txs []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readTransactions()
	if err != nil {
		return err
	}
	for _, t := range txs {
		i := slices.IndexFunc(current, func(c model.Transaction) bool { return c.ID == t.ID })
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", t.ID, model.ErrNotFound)
		}
		current[i] = t
	}
	return s.writeTransactions(current)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.DeleteTransactions(ctx, []string{id})
}

func (s *Store) DeleteTransactions(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readTransactions()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !slices.ContainsFunc(current, func(c model.Transaction) bool { return c.ID == id }) {
			return fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
		}
		drop[id] = true
	}
	current = slices.DeleteFunc(current, func(c model.Transaction) bool { return drop[c.ID] })
	return s.writeTransactions(current)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) readAccounts() ([]model.Account, error) {
	var accts []model.Account
	err := s.readFile(AccountsFile, func(r io.Reader) (err error) {
		accts, err = accounts.ReadAccounts(r)
		return err
	})
	return accts, err
}

func (s *Store) readProjects() ([]model.Project, error) {
	var projects []model.Project
	err := s.readFile(ProjectsFile, func(r io.Reader) (err error) {
		projects, err = ReadProjects(r)
		return err
	})
	return projects, err
}

func (s *Store) readTransactions() ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.readFile(TransactionsFile, func(r io.Reader) (err error) {
		txs, err = ReadTransactions(r)
		return err
	})
	return txs, err
}

func (s *Store) writeTransactions(txs []model.Transaction) error {
	return s.replaceFile(TransactionsFile, func(w io.Writer) error { return WriteTransactions(w, txs) })
}

// readFile treats a missing file as empty.
func (s *Store) readFile(name string, read func(io.Reader) error) error {
	path := s.path(name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// replaceFile writes name through a temp file in the same directory and
// renames it into place.
func (s *Store) replaceFile(name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
