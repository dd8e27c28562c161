// Package balance reduces the transaction log into per-project and
// per-investor equity balances. Balances are never stored; they are
// recomputed from the log on every read.
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// Unassigned is the project key of impacts whose transaction has no project.
const Unassigned = "unassigned"

// Chart tells which accounts are investor equity accounts.
type Chart interface {
	IsEquity(accountID string) bool
}

// Snapshot holds the balances derived from one read of the log.
type Snapshot struct {
	ProjectBalances         map[string]decimal.Decimal
	InvestorTotalBalances   map[string]decimal.Decimal
	InvestorProjectBalances map[string]map[string]decimal.Decimal
}

// Impact is the signed contribution of one transaction to one investor.
type Impact struct {
	InvestorID string
	ProjectID  string
	Amount     decimal.Decimal
}

// Relevant reports whether tx can affect equity at all: every transfer, and
// income booked straight into an equity account.
func Relevant(tx model.Transaction, chart Chart) bool {
	switch tx.Type {
	case model.TxTransfer:
		return true
	case model.TxIncome:
		return chart.IsEquity(tx.AccountID)
	}
	return false
}

// Impacts returns the equity impacts of tx. Transactions that touch no
// equity account have none.
func Impacts(tx model.Transaction, chart Chart) []Impact {
	if !Relevant(tx, chart) {
		return nil
	}
	project := tx.ProjectID
	if project == "" {
		project = Unassigned
	}

	if tx.Type == model.TxIncome {
		return []Impact{{InvestorID: tx.AccountID, ProjectID: project, Amount: tx.Amount}}
	}

	fromEquity := chart.IsEquity(tx.FromAccountID)
	toEquity := chart.IsEquity(tx.ToAccountID)
	switch {
	case fromEquity && toEquity:
		return []Impact{
			{InvestorID: tx.FromAccountID, ProjectID: project, Amount: tx.Amount.Neg()},
			{InvestorID: tx.ToAccountID, ProjectID: project, Amount: tx.Amount},
		}
	case fromEquity:
		return []Impact{{InvestorID: tx.FromAccountID, ProjectID: project, Amount: tx.Amount}}
	case toEquity:
		amount := tx.Amount.Neg()
		if isCredit(tx) {
			amount = tx.Amount
		}
		return []Impact{{InvestorID: tx.ToAccountID, ProjectID: project, Amount: amount}}
	}
	return nil
}

// isCredit reports whether an inbound transfer to an investor is earnings
// rather than returned capital. Legacy rows only match "profit".
func isCredit(tx model.Transaction) bool {
	return tx.IsProfitTagged() || tx.Purpose == model.PurposePMFee
}

// Aggregate folds txs into a Snapshot. The result depends only on the set
// of transactions, not their order. Every project in projects appears in
// ProjectBalances, at zero if nothing touched it.
func Aggregate(txs []model.Transaction, chart Chart, projects []model.Project) Snapshot {
	snap := Snapshot{
		ProjectBalances:         make(map[string]decimal.Decimal, len(projects)),
		InvestorTotalBalances:   make(map[string]decimal.Decimal),
		InvestorProjectBalances: make(map[string]map[string]decimal.Decimal, len(projects)),
	}
	for _, p := range projects {
		snap.ProjectBalances[p.ID] = decimal.Zero
	}

	for _, tx := range txs {
		for _, im := range Impacts(tx, chart) {
			snap.apply(im)
		}
	}
	return snap
}

func (s *Snapshot) apply(im Impact) {
	s.InvestorTotalBalances[im.InvestorID] = s.InvestorTotalBalances[im.InvestorID].Add(im.Amount)
	if im.ProjectID == Unassigned {
		return
	}
	s.ProjectBalances[im.ProjectID] = s.ProjectBalances[im.ProjectID].Add(im.Amount)
	byInvestor, ok := s.InvestorProjectBalances[im.ProjectID]
	if !ok {
		byInvestor = make(map[string]decimal.Decimal)
		s.InvestorProjectBalances[im.ProjectID] = byInvestor
	}
	byInvestor[im.InvestorID] = byInvestor[im.InvestorID].Add(im.Amount)
}

// Investor returns an investor's balance in one project, or across all
// projects when projectID is empty.
func (s Snapshot) Investor(investorID, projectID string) decimal.Decimal {
	if projectID == "" {
		return s.InvestorTotalBalances[investorID]
	}
	return s.InvestorProjectBalances[projectID][investorID]
}
