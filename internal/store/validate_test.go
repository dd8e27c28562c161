package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/equity/internal/model"
)

var knownAccounts = accountSet{"clearing": true, "bank": true, "inv-a": true, "inv-b": true}

func TestValidate_Valid(t *testing.T) {
	txs := []model.Transaction{
		transfer("t1", "inv-a", "bank", "100.25"),
		{ID: "t2", Type: model.TxIncome, Amount: dec("10"), Date: date(2025, 1, 2), AccountID: "inv-a"},
	}
	assert.Empty(t, ValidateTransactions(txs, knownAccounts))
}

func TestValidate_Invariants(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(tx *model.Transaction)
		invariant int
	}{
		{"missing id", func(tx *model.Transaction) { tx.ID = "" }, 1},
		{"zero amount", func(tx *model.Transaction) { tx.Amount = dec("0") }, 2},
		{"negative amount", func(tx *model.Transaction) { tx.Amount = dec("-3") }, 2},
		{"three decimals", func(tx *model.Transaction) { tx.Amount = dec("1.005") }, 2},
		{"unknown type", func(tx *model.Transaction) { tx.Type = "GIFT" }, 3},
		{"no date", func(tx *model.Transaction) { tx.Date = model.Transaction{}.Date }, 3},
		{"missing to", func(tx *model.Transaction) { tx.ToAccountID = "" }, 4},
		{"self transfer", func(tx *model.Transaction) { tx.ToAccountID = tx.FromAccountID }, 4},
		{"source not mirrored", func(tx *model.Transaction) { tx.AccountID = "bank" }, 4},
		{"unknown account", func(tx *model.Transaction) { tx.ToAccountID = "ghost" }, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := transfer("t1", "inv-a", "bank", "100")
			tt.mutate(&tx)
			errs := ValidateTransactions([]model.Transaction{tx}, knownAccounts)
			require.NotEmpty(t, errs)
			var invariants []int
			for _, e := range errs {
				invariants = append(invariants, e.Invariant)
			}
			assert.Contains(t, invariants, tt.invariant)
		})
	}
}

func TestValidate_DuplicateIDs(t *testing.T) {
	txs := []model.Transaction{
		transfer("t1", "inv-a", "bank", "1"),
		transfer("t1", "inv-b", "bank", "1"),
	}
	errs := ValidateTransactions(txs, knownAccounts)
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Equal(t, "t1", errs[0].TxID)
}

func TestValidate_SingleLegNeedsAccount(t *testing.T) {
	tx := model.Transaction{ID: "e1", Type: model.TxExpense, Amount: dec("5"), Date: date(2025, 1, 1)}
	errs := ValidateTransactions([]model.Transaction{tx}, knownAccounts)
	require.Len(t, errs, 1)
	assert.Equal(t, 4, errs[0].Invariant)
}
