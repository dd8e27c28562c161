// Package distribution splits a project's profit pool among its investors
// in proportion to their contributed capital and turns the split into
// ledger legs.
package distribution

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// Chart is the account lookup the planner needs.
type Chart interface {
	IsEquity(accountID string) bool
	Name(accountID string) string
}

// Capital returns each investor's net contributed capital in projectID:
// transfers out of the investor's account count up, transfers into it
// count down. Every transfer into the account is subtracted, prior profit
// credits included.
func Capital(projectID string, txs []model.Transaction, chart Chart) map[string]decimal.Decimal {
	capital := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsTransfer() || tx.ProjectID != projectID || tx.FromAccountID == tx.ToAccountID {
			continue
		}
		if chart.IsEquity(tx.FromAccountID) {
			capital[tx.FromAccountID] = capital[tx.FromAccountID].Add(tx.Amount)
		}
		if chart.IsEquity(tx.ToAccountID) {
			capital[tx.ToAccountID] = capital[tx.ToAccountID].Sub(tx.Amount)
		}
	}
	return capital
}

// Plan splits pool across the investors of projectID with positive
// capital. Rows are ordered by investor name. A project without capital
// fails with NoCapitalError before the pool is looked at.
func Plan(projectID string, pool decimal.Decimal, txs []model.Transaction, chart Chart) ([]model.DistributionPlan, error) {
	total := decimal.Zero
	var plans []model.DistributionPlan
	for investor, capital := range Capital(projectID, txs, chart) {
		if !capital.IsPositive() {
			continue
		}
		total = total.Add(capital)
		plans = append(plans, model.DistributionPlan{InvestorID: investor, Principal: capital})
	}
	if !total.IsPositive() {
		return nil, &model.NoCapitalError{ProjectID: projectID}
	}
	if !pool.IsPositive() {
		return nil, model.Invalid("pool", "must be positive, got %s", pool)
	}

	for i := range plans {
		p := &plans[i]
		p.SharePercentage = p.Principal.Div(total)
		p.ProfitShare = pool.Mul(p.Principal).Div(total)
		p.NewEquityBalance = p.Principal.Add(p.ProfitShare)
	}
	slices.SortFunc(plans, func(a, b model.DistributionPlan) int {
		return cmp.Or(
			strings.Compare(chart.Name(a.InvestorID), chart.Name(b.InvestorID)),
			strings.Compare(a.InvestorID, b.InvestorID),
		)
	})
	return plans, nil
}

// Total returns the sum of the plan's profit shares.
func Total(plans []model.DistributionPlan) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range plans {
		sum = sum.Add(p.ProfitShare)
	}
	return sum
}
