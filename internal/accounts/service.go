package accounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts   []model.Account
	byID       map[string]model.Account
	clearingID string
}

// NewService creates a Service from a slice of accounts. clearingID is the
// configured clearing account; when empty the account named
// "Internal Clearing" is used.
func NewService(accounts []model.Account, clearingID string) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	s := &Service{accounts: accounts, byID: byID, clearingID: clearingID}
	if _, ok := byID[clearingID]; !ok {
		s.clearingID = ""
		for _, a := range accounts {
			if a.HasClearingName() {
				s.clearingID = a.ID
				break
			}
		}
	}
	return s
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Equity returns the investor capital accounts.
func (s *Service) Equity() []model.Account {
	return s.ByType(model.AccountTypeEquity)
}

// IsEquity reports whether id is an investor capital account.
func (s *Service) IsEquity(id string) bool {
	a, ok := s.byID[id]
	return ok && a.IsEquity()
}

// IsClearing reports whether id is the clearing account. Accounts that carry
// the legacy clearing name also count.
func (s *Service) IsClearing(id string) bool {
	if id == "" {
		return false
	}
	if id == s.clearingID {
		return true
	}
	a, ok := s.byID[id]
	return ok && a.HasClearingName()
}

// Name returns the display name of an account, or the id when unknown.
func (s *Service) Name(id string) string {
	if a, ok := s.byID[id]; ok {
		return a.Name
	}
	return id
}

// Clearing returns the clearing account if the chart has one.
func (s *Service) Clearing() (model.Account, bool) {
	return s.Get(s.clearingID)
}

// Store is the subset of the transaction store needed to manage accounts.
type Store interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	CreateAccount(ctx context.Context, acct model.Account) error
}

// EnsureClearing returns the clearing account, creating it when the store
// has none. The configured id is preferred; an account named
// "Internal Clearing" is accepted for older data.
func EnsureClearing(ctx context.Context, st Store, configuredID string, logger *slog.Logger) (model.Account, error) {
	accts, err := st.ListAccounts(ctx)
	if err != nil {
		return model.Account{}, fmt.Errorf("listing accounts: %w", err)
	}

	svc := NewService(accts, configuredID)
	if acct, ok := svc.Clearing(); ok {
		if acct.Type != model.AccountTypeBank {
			return model.Account{}, model.Invalid("clearing account", "%s is a %s account, want BANK", acct.ID, acct.Type)
		}
		return acct, nil
	}

	newID := configuredID
	if newID == "" {
		newID = id.NewAccountID()
	}
	acct := model.Account{
		ID:          newID,
		Name:        model.ClearingAccountName,
		Type:        model.AccountTypeBank,
		IsPermanent: true,
	}
	if err := st.CreateAccount(ctx, acct); err != nil {
		return model.Account{}, fmt.Errorf("creating clearing account: %w", err)
	}
	if logger != nil {
		logger.Info("created clearing account", "account_id", acct.ID)
	}
	return acct, nil
}
