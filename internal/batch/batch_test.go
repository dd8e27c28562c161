package batch

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/equity/internal/accounts"
	"github.com/cleared-dev/equity/internal/balance"
	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

func distBatch() []model.Transaction {
	const b = "01JDIST"
	desc := "Profit distribution: Q1"
	leg := func(group int, role model.LegRole, typ model.TxType, to, amount string) model.Transaction {
		tx := model.Transaction{
			ID: id.FormatLegID(b, group, role), Type: typ, Amount: dec(amount), Date: date(2025, 3, 31),
			Description: desc, AccountID: "clearing", ProjectID: "P", BatchID: b, LegRole: role,
		}
		if typ == model.TxTransfer {
			tx.FromAccountID, tx.ToAccountID = "clearing", to
			tx.Purpose = model.PurposeProfitShare
		} else {
			tx.CategoryID = "equity-dist"
			tx.Purpose = model.PurposeDistribution
		}
		return tx
	}
	return []model.Transaction{
		leg(0, model.LegRoleExpense, model.TxExpense, "", "2000"),
		leg(0, model.LegRoleCredit, model.TxTransfer, "inv-a", "2000"),
		leg(1, model.LegRoleExpense, model.TxExpense, "", "1000"),
		leg(1, model.LegRoleCredit, model.TxTransfer, "inv-b", "1000"),
	}
}

func moveBatch() []model.Transaction {
	const b = "01JMOVE"
	return []model.Transaction{
		{
			ID: id.FormatLegID(b, 0, model.LegRoleDivest), Type: model.TxTransfer, Amount: dec("500"), Date: date(2025, 4, 1),
			Description: "Equity Move out to Annex", AccountID: "clearing", FromAccountID: "clearing", ToAccountID: "inv-a",
			ProjectID: "P", BatchID: b, Purpose: model.PurposeEquityMove, LegRole: model.LegRoleDivest,
		},
		{
			ID: id.FormatLegID(b, 0, model.LegRoleInvest), Type: model.TxTransfer, Amount: dec("500"), Date: date(2025, 4, 1),
			Description: "Equity Move in from Tower", AccountID: "inv-a", FromAccountID: "inv-a", ToAccountID: "clearing",
			ProjectID: "Q", BatchID: b, Purpose: model.PurposeEquityMove, LegRole: model.LegRoleInvest,
		},
	}
}

func TestResolve_Simple(t *testing.T) {
	txs := []model.Transaction{{ID: "t1", Type: model.TxTransfer, Amount: dec("10")}}
	b, err := Resolve("t1", txs)
	require.NoError(t, err)
	assert.Equal(t, ModeSimple, b.Mode)
	assert.Empty(t, b.Siblings)
	assert.Len(t, b.Legs(), 1)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve("nope", distBatch())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolve_DistPairsByGroup(t *testing.T) {
	txs := distBatch()

	for _, mainID := range []string{txs[2].ID, txs[3].ID} {
		b, err := Resolve(mainID, txs)
		require.NoError(t, err)
		assert.Equal(t, ModeDist, b.Mode)
		assert.Len(t, b.Siblings, 3)
		assert.Equal(t, txs[2].ID, b.Expense.ID)
		assert.Equal(t, txs[3].ID, b.Credit.ID)
	}
}

func TestResolve_LegacyDist(t *testing.T) {
	txs := []model.Transaction{
		{ID: "x1", Type: model.TxExpense, Amount: dec("300"), Description: "profit Q1", AccountID: "clearing", BatchID: "old"},
		{ID: "x2", Type: model.TxTransfer, Amount: dec("700"), Description: "profit Q1", FromAccountID: "clearing", ToAccountID: "inv-b", BatchID: "old"},
		{ID: "x3", Type: model.TxTransfer, Amount: dec("300"), Description: "profit Q1", FromAccountID: "clearing", ToAccountID: "inv-a", BatchID: "old"},
	}

	b, err := Resolve("x1", txs)
	require.NoError(t, err)
	assert.Equal(t, ModeDist, b.Mode)
	assert.Equal(t, "x3", b.Credit.ID, "same amount is preferred")
}

func TestResolve_MoveByRole(t *testing.T) {
	txs := moveBatch()
	b, err := Resolve(txs[1].ID, txs)
	require.NoError(t, err)
	assert.Equal(t, ModeMove, b.Mode)
	assert.Equal(t, txs[0].ID, b.Divest.ID)
	assert.Equal(t, txs[1].ID, b.Invest.ID)
}

func TestResolve_LegacyMoveByIDTag(t *testing.T) {
	// Legacy rows: no purpose, no role; the invest leg is listed first and
	// the amounts differ so only the id tag can tell them apart.
	txs := []model.Transaction{
		{ID: "m-invest", Type: model.TxTransfer, Amount: dec("10"), Description: "Equity move in", FromAccountID: "inv-a", ToAccountID: "clearing", BatchID: "old"},
		{ID: "m-divest", Type: model.TxTransfer, Amount: dec("20"), Description: "Equity move out", FromAccountID: "clearing", ToAccountID: "inv-a", BatchID: "old"},
	}

	b, err := Resolve("m-invest", txs)
	require.NoError(t, err)
	assert.Equal(t, "m-divest", b.Divest.ID)
	assert.Equal(t, "m-invest", b.Invest.ID)
}

func TestResolve_Ambiguous(t *testing.T) {
	txs := []model.Transaction{
		{ID: "a", Type: model.TxTransfer, Amount: dec("10"), Description: "rent split", BatchID: "b"},
		{ID: "c", Type: model.TxTransfer, Amount: dec("10"), Description: "rent split", BatchID: "b"},
	}

	b, err := Resolve("a", txs)
	var amb *model.AmbiguousBatchError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, "b", amb.BatchID)
	assert.Equal(t, 2, amb.Legs)
	assert.Equal(t, ModeSimple, b.Mode)
	assert.Len(t, b.Siblings, 1)
}

func TestResolve_MoveMissingLeg(t *testing.T) {
	txs := moveBatch()
	txs[1].LegRole = model.LegRoleDivest

	_, err := Resolve(txs[0].ID, txs)
	var amb *model.AmbiguousBatchError
	assert.True(t, errors.As(err, &amb))
}

func TestMembers(t *testing.T) {
	txs := append(distBatch(), model.Transaction{ID: "other"})
	assert.Len(t, Members(txs[1], txs), 4)
	assert.Equal(t, []model.Transaction{txs[4]}, Members(txs[4], txs))
}

func TestCommitEdit_Move(t *testing.T) {
	txs := moveBatch()
	b, err := Resolve(txs[0].ID, txs)
	require.NoError(t, err)

	legs, err := CommitEdit(b, EditFields{
		Amount:        ptr(dec("750")),
		InvestorID:    ptr("inv-b"),
		DestProjectID: ptr("R"),
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)

	divest, invest := legs[0], legs[1]
	assert.True(t, divest.Amount.Equal(dec("750")))
	assert.True(t, invest.Amount.Equal(dec("750")))
	assert.Equal(t, "inv-b", divest.ToAccountID)
	assert.Equal(t, "inv-b", invest.FromAccountID)
	assert.Equal(t, "inv-b", invest.AccountID)
	assert.Equal(t, "P", divest.ProjectID, "source side untouched")
	assert.Equal(t, "R", invest.ProjectID)
	assert.Equal(t, txs[0].ID, divest.ID)
	assert.Equal(t, txs[1].ID, invest.ID)
}

func TestCommitEdit_MoveConservesEquity(t *testing.T) {
	chart := accounts.NewService([]model.Account{
		{ID: "clearing", Name: model.ClearingAccountName, Type: model.AccountTypeBank},
		{ID: "inv-a", Name: "A", Type: model.AccountTypeEquity},
	}, "clearing")
	b, err := Resolve(moveBatch()[0].ID, moveBatch())
	require.NoError(t, err)
	legs, err := CommitEdit(b, EditFields{Amount: ptr(dec("123.45"))})
	require.NoError(t, err)

	for _, set := range [][]model.Transaction{moveBatch(), legs} {
		snap := balance.Aggregate(set, chart, nil)
		assert.True(t, snap.InvestorTotalBalances["inv-a"].IsZero())
		assert.True(t, snap.ProjectBalances["P"].Neg().Equal(snap.ProjectBalances["Q"]))
	}
}

func TestCommitEdit_Dist(t *testing.T) {
	txs := distBatch()
	b, err := Resolve(txs[1].ID, txs)
	require.NoError(t, err)

	legs, err := CommitEdit(b, EditFields{
		Amount:     ptr(dec("2100")),
		InvestorID: ptr("inv-c"),
		ProjectID:  ptr("Q"),
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, model.TxExpense, legs[0].Type)
	assert.Equal(t, "clearing", legs[0].AccountID)
	assert.Equal(t, "inv-c", legs[1].ToAccountID)
	for _, l := range legs {
		assert.True(t, l.Amount.Equal(dec("2100")))
		assert.Equal(t, "Q", l.ProjectID)
	}
}

func TestCommitEdit_Simple(t *testing.T) {
	txs := []model.Transaction{{ID: "t1", Type: model.TxExpense, Amount: dec("10"), AccountID: "bank"}}
	b, err := Resolve("t1", txs)
	require.NoError(t, err)

	legs, err := CommitEdit(b, EditFields{Description: ptr("fixed"), CategoryID: ptr("repairs")})
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, "fixed", legs[0].Description)
	assert.Equal(t, "repairs", legs[0].CategoryID)
}

func TestCommitEdit_Invalid(t *testing.T) {
	move, err := Resolve(moveBatch()[0].ID, moveBatch())
	require.NoError(t, err)
	dist, err := Resolve(distBatch()[1].ID, distBatch())
	require.NoError(t, err)
	simple := Batch{Main: model.Transaction{ID: "t"}, Mode: ModeSimple}

	tests := []struct {
		name   string
		batch  Batch
		fields EditFields
	}{
		{"zero amount", move, EditFields{Amount: ptr(decimal.Zero)}},
		{"negative amount", simple, EditFields{Amount: ptr(dec("-1"))}},
		{"empty investor", move, EditFields{InvestorID: ptr("")}},
		{"project on move", move, EditFields{ProjectID: ptr("Q")}},
		{"destination on simple", simple, EditFields{DestProjectID: ptr("Q")}},
		{"investor on simple", simple, EditFields{InvestorID: ptr("inv-a")}},
		{"category on move", move, EditFields{CategoryID: ptr("repairs")}},
		{"category on distribution", dist, EditFields{CategoryID: ptr("repairs")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CommitEdit(tt.batch, tt.fields)
			var verr *model.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}
