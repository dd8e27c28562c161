package distribution

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// Financials computes what projectID can still distribute: income booked
// to non-equity accounts, less operating expenses, less expenses already
// booked to the distribution category.
func Financials(projectID string, txs []model.Transaction, chart Chart, distributionCategoryID string) model.ProjectFinancials {
	f := model.ProjectFinancials{
		ProjectID:          projectID,
		Income:             decimal.Zero,
		Expenses:           decimal.Zero,
		PriorDistributions: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.ProjectID != projectID {
			continue
		}
		switch tx.Type {
		case model.TxIncome:
			if !chart.IsEquity(tx.AccountID) {
				f.Income = f.Income.Add(tx.Amount)
			}
		case model.TxExpense:
			if isDistribution(tx, distributionCategoryID) {
				f.PriorDistributions = f.PriorDistributions.Add(tx.Amount)
			} else {
				f.Expenses = f.Expenses.Add(tx.Amount)
			}
		}
	}
	f.Available = f.Income.Sub(f.Expenses).Sub(f.PriorDistributions)
	return f
}

func isDistribution(tx model.Transaction, categoryID string) bool {
	if tx.Purpose == model.PurposeDistribution {
		return true
	}
	return categoryID != "" && tx.CategoryID == categoryID
}
