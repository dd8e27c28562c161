package model

import "strings"

// AccountType classifies accounts by the role they play in the equity ledger.
type AccountType string

const (
	AccountTypeEquity AccountType = "EQUITY"
	AccountTypeBank   AccountType = "BANK"
	AccountTypeOther  AccountType = "OTHER"
)

// ClearingAccountName is the name of the system bank account used as the
// routing hub for equity moves and distributions.
const ClearingAccountName = "Internal Clearing"

// Account is one row of the chart of accounts. An equity account is one
// investor's capital account.
type Account struct {
	ID          string
	Name        string
	Type        AccountType
	IsPermanent bool
}

// IsEquity reports whether the account is an investor capital account.
func (a Account) IsEquity() bool {
	return a.Type == AccountTypeEquity
}

// HasClearingName reports whether the account carries the legacy clearing name.
func (a Account) HasClearingName() bool {
	return a.Type == AccountTypeBank && strings.EqualFold(strings.TrimSpace(a.Name), ClearingAccountName)
}

// Project is a cost center that transactions may be tagged with.
type Project struct {
	ID   string
	Name string
}
