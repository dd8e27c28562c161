package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cleared-dev/equity/internal/model"
)

// Memory implements Store in process. All writes are atomic.
type Memory struct {
	mu       sync.RWMutex
	accounts []model.Account
	projects []model.Project
	txs      []model.Transaction
}

var (
	_ Store        = (*Memory)(nil)
	_ BatchUpdater = (*Memory)(nil)
	_ BatchDeleter = (*Memory)(nil)
)

// NewMemory creates a store seeded with accounts and projects.
func NewMemory(accounts []model.Account, projects []model.Project) *Memory {
	return &Memory{
		accounts: slices.Clone(accounts),
		projects: slices.Clone(projects),
	}
}

func (m *Memory) ListAccounts(context.Context) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.accounts), nil
}

func (m *Memory) CreateAccount(_ context.Context, acct model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ID == acct.ID {
			return fmt.Errorf("account %s already exists", acct.ID)
		}
	}
	m.accounts = append(m.accounts, acct)
	return nil
}

func (m *Memory) ListProjects(context.Context) ([]model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.projects), nil
}

// CreateProject adds a project.
func (m *Memory) CreateProject(_ context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if existing.ID == p.ID {
			return fmt.Errorf("project %s already exists", p.ID)
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

func (m *Memory) ListTransactions(context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.txs), nil
}

func (m *Memory) AppendTransactions(_ context.Context, txs []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(m.txs)+len(txs))
	for _, t := range m.txs {
		seen[t.ID] = true
	}
	for _, t := range txs {
		if t.ID == "" {
			return fmt.Errorf("transaction without id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate transaction id %s", t.ID)
		}
		seen[t.ID] = true
	}
	m.txs = append(m.txs, txs...)
	return nil
}

func (m *Memory) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	return m.UpdateTransactions(ctx, []model.Transaction{tx})
}

func (m *Memory) UpdateTransactions(_ context.Context, txs []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := make([]int, len(txs))
	for i, t := range txs {
		pos[i] = m.indexLocked(t.ID)
		if pos[i] < 0 {
			return fmt.Errorf("transaction %s: %w", t.ID, model.ErrNotFound)
		}
	}
	for i, t := range txs {
		m.txs[pos[i]] = t
	}
	return nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id string) error {
	return m.DeleteTransactions(ctx, []string{id})
}

func (m *Memory) DeleteTransactions(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if m.indexLocked(id) < 0 {
			return fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
		}
		drop[id] = true
	}
	m.txs = slices.DeleteFunc(m.txs, func(t model.Transaction) bool { return drop[t.ID] })
	return nil
}

func (m *Memory) indexLocked(id string) int {
	return slices.IndexFunc(m.txs, func(t model.Transaction) bool { return t.ID == id })
}
