package accounts

import "github.com/cleared-dev/equity/internal/model"

// Well-known ids of the accounts in the default chart.
const (
	ClearingID  = "sys-clearing"
	OperatingID = "bank-operating"
)

// DefaultChart returns the accounts a new data directory starts with.
// Investor equity accounts are added by the user.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: ClearingID, Name: model.ClearingAccountName, Type: model.AccountTypeBank, IsPermanent: true},
		{ID: OperatingID, Name: "Operating Bank", Type: model.AccountTypeBank, IsPermanent: true},
	}
}
