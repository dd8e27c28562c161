package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the kind of a transaction.
type TxType string

const (
	TxIncome   TxType = "INCOME"
	TxExpense  TxType = "EXPENSE"
	TxTransfer TxType = "TRANSFER"
	TxLoan     TxType = "LOAN"
)

// Purpose is the economic meaning a transaction was created with. Rows
// written before purposes existed leave it empty and are interpreted from
// their description (see legacy.go).
type Purpose string

const (
	PurposeNone         Purpose = ""
	PurposeInvestment   Purpose = "investment"
	PurposeWithdrawal   Purpose = "withdrawal"
	PurposeProfitShare  Purpose = "profit_share"
	PurposePMFee        Purpose = "pm_fee"
	PurposeEquityMove   Purpose = "equity_move"
	PurposePayout       Purpose = "payout"
	PurposeDistribution Purpose = "distribution"
)

// LegRole identifies a leg inside a multi-leg batch.
type LegRole string

const (
	LegRoleNone LegRole = ""
	// LegRoleExpense is the clearing-account expense of a distribution.
	LegRoleExpense LegRole = "expense"
	// LegRoleCredit is the clearing -> investor transfer of a distribution.
	LegRoleCredit LegRole = "credit"
	// LegRoleDivest is the source-project outflow of an equity move.
	LegRoleDivest LegRole = "divest"
	// LegRoleInvest is the destination-project inflow of an equity move.
	LegRoleInvest LegRole = "invest"
)

// Transaction is one entry in the append-only transaction log. Amount is
// always positive; direction comes from Type and the account roles.
type Transaction struct {
	ID            string
	Type          TxType
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	AccountID     string
	FromAccountID string
	ToAccountID   string
	ProjectID     string
	CategoryID    string
	ContactID     string
	BatchID       string
	Purpose       Purpose
	LegRole       LegRole
}

// IsTransfer reports whether the transaction moves funds between two accounts.
func (t Transaction) IsTransfer() bool {
	return t.Type == TxTransfer
}

// Involves reports whether accountID is one of the accounts the transaction touches.
func (t Transaction) Involves(accountID string) bool {
	if accountID == "" {
		return false
	}
	if t.IsTransfer() {
		return t.FromAccountID == accountID || t.ToAccountID == accountID
	}
	return t.AccountID == accountID
}

// InBatch reports whether the transaction is part of a multi-leg batch.
func (t Transaction) InBatch() bool {
	return t.BatchID != ""
}
