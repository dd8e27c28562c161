// Package ledgerview builds the ordered, classified, running-balance view
// of equity transactions that the ledger screens and reports show.
package ledgerview

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/balance"
	"github.com/cleared-dev/equity/internal/model"
)

// Payment type labels.
const (
	TypeProfitShare    = "Profit Share"
	TypeInvestment     = "Investment"
	TypePMFeeDeposit   = "PM Fee Deposit"
	TypeWithdrawal     = "Withdrawal"
	TypeEquityTransfer = "Equity Transfer"
)

// DefaultUnit is the rounding unit for displayed amounts and balances.
var DefaultUnit = decimal.NewFromInt(100)

// Effect is the direction a row moves the running balance.
type Effect string

const (
	EffectNone       Effect = ""
	EffectDeposit    Effect = "deposit"
	EffectWithdrawal Effect = "withdrawal"
)

// Chart is the account lookup the builder needs.
type Chart interface {
	IsEquity(accountID string) bool
	IsClearing(accountID string) bool
	Name(accountID string) string
}

// Row is one line of a ledger. Amount, Deposit, Withdrawal and Balance are
// rounded to the builder's unit.
type Row struct {
	TransactionID string
	Date          time.Time
	PaymentType   string
	Effect        Effect
	Amount        decimal.Decimal
	Deposit       decimal.Decimal
	Withdrawal    decimal.Decimal
	Balance       decimal.Decimal
	Info          string
	ProjectID     string
	Description   string
	BatchID       string
}

// Builder builds ledgers against one chart of accounts.
type Builder struct {
	Chart        Chart
	ProjectNames map[string]string
	// Unit is the rounding unit. Zero disables rounding.
	Unit decimal.Decimal
}

// NewBuilder creates a Builder that rounds to DefaultUnit.
func NewBuilder(chart Chart, projects []model.Project) *Builder {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return &Builder{Chart: chart, ProjectNames: names, Unit: DefaultUnit}
}

// Build returns the ledger for scope using the default rounding unit.
func Build(txs []model.Transaction, scope Scope, chart Chart, projects []model.Project) []Row {
	return NewBuilder(chart, projects).Build(txs, scope)
}

// Build filters txs to scope, orders them by date (ties keep log order),
// classifies each one and folds the rounded amounts into a running balance.
func (b *Builder) Build(txs []model.Transaction, scope Scope) []Row {
	var selected []model.Transaction
	for _, tx := range txs {
		if b.touchesEquity(tx) && b.inScope(tx, scope) {
			selected = append(selected, tx)
		}
	}
	slices.SortStableFunc(selected, func(a, c model.Transaction) int {
		return a.Date.Compare(c.Date)
	})

	rows := make([]Row, 0, len(selected))
	running := decimal.Zero
	for _, tx := range selected {
		label, effect := b.classify(tx, scope)
		amount := Round(tx.Amount, b.Unit)
		row := Row{
			TransactionID: tx.ID,
			Date:          tx.Date,
			PaymentType:   label,
			Effect:        effect,
			Amount:        amount,
			Info:          b.info(tx, scope),
			ProjectID:     tx.ProjectID,
			Description:   tx.Description,
			BatchID:       tx.BatchID,
		}
		switch effect {
		case EffectDeposit:
			row.Deposit = amount
			running = running.Add(amount)
		case EffectWithdrawal:
			row.Withdrawal = amount
			running = running.Sub(amount)
		}
		row.Balance = running
		rows = append(rows, row)
	}
	return rows
}

// Round rounds amount to the nearest multiple of unit, halves away from zero.
func Round(amount, unit decimal.Decimal) decimal.Decimal {
	if unit.IsZero() {
		return amount
	}
	return amount.Div(unit).Round(0).Mul(unit)
}

// touchesEquity keeps equity income and transfers with at least one equity side.
func (b *Builder) touchesEquity(tx model.Transaction) bool {
	if !balance.Relevant(tx, b.Chart) {
		return false
	}
	if tx.IsTransfer() {
		return b.Chart.IsEquity(tx.FromAccountID) || b.Chart.IsEquity(tx.ToAccountID)
	}
	return true
}

func (b *Builder) inScope(tx model.Transaction, scope Scope) bool {
	switch scope.Kind {
	case ProjectScope:
		return tx.ProjectID == scope.ProjectID
	case InvestorScope:
		if !tx.Involves(scope.InvestorID) {
			return false
		}
		if p := scope.restrictedProject(); p != "" {
			return tx.ProjectID == p
		}
		return true
	}
	return true
}

func (b *Builder) classify(tx model.Transaction, scope Scope) (string, Effect) {
	if tx.Type == model.TxIncome {
		return TypeProfitShare, EffectDeposit
	}

	fromEquity := b.Chart.IsEquity(tx.FromAccountID)
	toEquity := b.Chart.IsEquity(tx.ToAccountID)
	if fromEquity && toEquity {
		if scope.Kind != InvestorScope {
			return TypeEquityTransfer, EffectNone
		}
		if tx.ToAccountID == scope.InvestorID {
			return TypeEquityTransfer, EffectDeposit
		}
		return TypeEquityTransfer, EffectWithdrawal
	}

	fromInvestor, toInvestor := fromEquity, toEquity
	if scope.Kind == InvestorScope {
		fromInvestor = tx.FromAccountID == scope.InvestorID
		toInvestor = tx.ToAccountID == scope.InvestorID
	}
	switch {
	case fromInvestor && !toInvestor:
		return TypeInvestment, EffectDeposit
	case toInvestor && !fromInvestor:
		if b.Chart.IsClearing(tx.FromAccountID) && tx.IsPMFeeTagged() {
			return TypePMFeeDeposit, EffectDeposit
		}
		if tx.IsProfitTagged() {
			return TypeProfitShare, EffectDeposit
		}
		return TypeWithdrawal, EffectWithdrawal
	}
	return TypeEquityTransfer, EffectNone
}

// info names the counterpart account, prefixed with the project name.
func (b *Builder) info(tx model.Transaction, scope Scope) string {
	var counterpart string
	switch {
	case !tx.IsTransfer():
		if scope.Kind != InvestorScope {
			counterpart = b.Chart.Name(tx.AccountID)
		}
	case scope.Kind == InvestorScope:
		if tx.FromAccountID == scope.InvestorID {
			counterpart = b.Chart.Name(tx.ToAccountID)
		} else {
			counterpart = b.Chart.Name(tx.FromAccountID)
		}
	default:
		fromEquity := b.Chart.IsEquity(tx.FromAccountID)
		toEquity := b.Chart.IsEquity(tx.ToAccountID)
		switch {
		case fromEquity && toEquity:
			counterpart = b.Chart.Name(tx.FromAccountID) + " → " + b.Chart.Name(tx.ToAccountID)
		case fromEquity:
			counterpart = b.Chart.Name(tx.ToAccountID)
		default:
			counterpart = b.Chart.Name(tx.FromAccountID)
		}
	}

	project := b.ProjectNames[tx.ProjectID]
	switch {
	case project == "":
		return counterpart
	case counterpart == "":
		return project
	}
	return project + ": " + counterpart
}
