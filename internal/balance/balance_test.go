package balance

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/equity/internal/accounts"
	"github.com/cleared-dev/equity/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testChart() *accounts.Service {
	return accounts.NewService([]model.Account{
		{ID: "clearing", Name: model.ClearingAccountName, Type: model.AccountTypeBank},
		{ID: "bank", Name: "Operating Bank", Type: model.AccountTypeBank},
		{ID: "inv-a", Name: "Investor A", Type: model.AccountTypeEquity},
		{ID: "inv-b", Name: "Investor B", Type: model.AccountTypeEquity},
	}, "clearing")
}

func transfer(id, from, to, amount, project, desc string) model.Transaction {
	return model.Transaction{
		ID: id, Type: model.TxTransfer, Amount: dec(amount), Date: date(2025, 1, 1),
		AccountID: from, FromAccountID: from, ToAccountID: to, ProjectID: project, Description: desc,
	}
}

var projects = []model.Project{{ID: "P", Name: "Tower"}, {ID: "Q", Name: "Annex"}}

func TestAggregate_InvestmentScenario(t *testing.T) {
	txs := []model.Transaction{
		transfer("t1", "inv-a", "bank", "10000", "P", "Initial capital"),
		transfer("t2", "inv-b", "bank", "5000", "P", "Initial capital"),
	}

	snap := Aggregate(txs, testChart(), projects)

	assert.True(t, snap.Investor("inv-a", "P").Equal(dec("10000")))
	assert.True(t, snap.Investor("inv-b", "P").Equal(dec("5000")))
	assert.True(t, snap.ProjectBalances["P"].Equal(dec("15000")))
	assert.True(t, snap.ProjectBalances["Q"].IsZero(), "known projects start at zero")
	assert.True(t, snap.Investor("inv-a", "").Equal(dec("10000")))
}

func TestImpacts(t *testing.T) {
	chart := testChart()
	tests := []struct {
		name string
		tx   model.Transaction
		want []Impact
	}{
		{
			name: "income into equity",
			tx:   model.Transaction{Type: model.TxIncome, AccountID: "inv-a", Amount: dec("300"), ProjectID: "P"},
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("300")}},
		},
		{
			name: "income without project is unassigned",
			tx:   model.Transaction{Type: model.TxIncome, AccountID: "inv-a", Amount: dec("300")},
			want: []Impact{{InvestorID: "inv-a", ProjectID: Unassigned, Amount: dec("300")}},
		},
		{
			name: "income into bank is ignored",
			tx:   model.Transaction{Type: model.TxIncome, AccountID: "bank", Amount: dec("300")},
		},
		{
			name: "expense is ignored",
			tx:   model.Transaction{Type: model.TxExpense, AccountID: "inv-a", Amount: dec("300")},
		},
		{
			name: "investment",
			tx:   transfer("t", "inv-a", "bank", "100", "P", ""),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("100")}},
		},
		{
			name: "withdrawal",
			tx:   transfer("t", "bank", "inv-a", "100", "P", "Owner Withdrawal"),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("-100")}},
		},
		{
			name: "legacy profit share",
			tx:   transfer("t", "clearing", "inv-a", "100", "P", "Q1 PROFIT split"),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("100")}},
		},
		{
			name: "legacy pm fee is a withdrawal",
			tx:   transfer("t", "clearing", "inv-a", "100", "P", "PM Fee March"),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("-100")}},
		},
		{
			name: "explicit pm fee is a credit",
			tx: func() model.Transaction {
				tx := transfer("t", "clearing", "inv-a", "100", "P", "March")
				tx.Purpose = model.PurposePMFee
				return tx
			}(),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("100")}},
		},
		{
			name: "explicit withdrawal ignores profit in text",
			tx: func() model.Transaction {
				tx := transfer("t", "bank", "inv-a", "100", "P", "profit taking")
				tx.Purpose = model.PurposeWithdrawal
				return tx
			}(),
			want: []Impact{{InvestorID: "inv-a", ProjectID: "P", Amount: dec("-100")}},
		},
		{
			name: "equity to equity",
			tx:   transfer("t", "inv-a", "inv-b", "100", "P", ""),
			want: []Impact{
				{InvestorID: "inv-a", ProjectID: "P", Amount: dec("-100")},
				{InvestorID: "inv-b", ProjectID: "P", Amount: dec("100")},
			},
		},
		{
			name: "bank to bank",
			tx:   transfer("t", "bank", "clearing", "100", "P", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Impacts(tt.tx, chart)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].InvestorID, got[i].InvestorID)
				assert.Equal(t, tt.want[i].ProjectID, got[i].ProjectID)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "amount: want %s got %s", tt.want[i].Amount, got[i].Amount)
			}
		})
	}
}

func TestAggregate_UnassignedOnlyInTotals(t *testing.T) {
	txs := []model.Transaction{
		transfer("t1", "inv-a", "bank", "700", "", "capital"),
		transfer("t2", "inv-a", "bank", "300", "P", "capital"),
	}

	snap := Aggregate(txs, testChart(), projects)

	assert.True(t, snap.Investor("inv-a", "").Equal(dec("1000")))
	assert.True(t, snap.ProjectBalances["P"].Equal(dec("300")))
	_, ok := snap.ProjectBalances[Unassigned]
	assert.False(t, ok)
	_, ok = snap.InvestorProjectBalances[Unassigned]
	assert.False(t, ok)
}

func TestAggregate_IdempotentAndOrderIndependent(t *testing.T) {
	txs := []model.Transaction{
		transfer("t1", "inv-a", "bank", "1000", "P", ""),
		transfer("t2", "bank", "inv-a", "250.50", "P", "Owner Withdrawal"),
		transfer("t3", "clearing", "inv-b", "99.99", "Q", "Profit distribution: Q1"),
		transfer("t4", "inv-a", "inv-b", "100", "Q", "Equity Transfer"),
		{ID: "t5", Type: model.TxIncome, AccountID: "inv-b", Amount: dec("40"), ProjectID: "P"},
	}
	chart := testChart()

	first := Aggregate(txs, chart, projects)
	second := Aggregate(txs, chart, projects)
	assert.Equal(t, first, second)

	reversed := slices.Clone(txs)
	slices.Reverse(reversed)
	third := Aggregate(reversed, chart, projects)
	for k, v := range first.InvestorTotalBalances {
		assert.True(t, v.Equal(third.InvestorTotalBalances[k]), "investor %s", k)
	}
	for k, v := range first.ProjectBalances {
		assert.True(t, v.Equal(third.ProjectBalances[k]), "project %s", k)
	}
}
