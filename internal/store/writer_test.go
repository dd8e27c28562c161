package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/equity/internal/model"
)

func batchLegs() []model.Transaction {
	a := transfer("b1-00-divest", "clearing", "inv-a", "100")
	b := transfer("b1-00-invest", "inv-a", "clearing", "100")
	c := transfer("b1-01-divest", "clearing", "inv-b", "50")
	for _, leg := range []*model.Transaction{&a, &b, &c} {
		leg.BatchID = "b1"
	}
	return []model.Transaction{a, b, c}
}

func TestWriterAppend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)

	written, replayed, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Len(t, written, 3)

	txs, _ := m.ListTransactions(ctx)
	assert.Len(t, txs, 3)
}

func TestWriterAppend_Replay(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)

	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	// Same ids again: nothing new is written.
	written, replayed, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Len(t, written, 3)
	txs, _ := m.ListTransactions(ctx)
	assert.Len(t, txs, 3)

	// A partial overlap is refused.
	legs := batchLegs()
	legs[2].ID = "b1-02-divest"
	_, _, err = w.Append(ctx, legs)
	var serr *model.StoreWriteError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "b1", serr.BatchID)
}

func TestWriterAppend_SameIDsDifferentContent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)

	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	tests := []struct {
		name   string
		change func(*model.Transaction)
	}{
		{"amount", func(tx *model.Transaction) { tx.Amount = dec("900") }},
		{"project", func(tx *model.Transaction) { tx.ProjectID = "p2" }},
		{"investor", func(tx *model.Transaction) { tx.ToAccountID = "inv-b" }},
		{"description", func(tx *model.Transaction) { tx.Description = "other" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legs := batchLegs()
			tt.change(&legs[0])
			written, replayed, err := w.Append(ctx, legs)
			var serr *model.StoreWriteError
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, err.Error(), "different content")
			assert.False(t, replayed)
			assert.Nil(t, written)
		})
	}

	// A later date alone still replays.
	legs := batchLegs()
	for i := range legs {
		legs[i].Date = date(2025, 1, 16)
	}
	_, replayed, err := w.Append(ctx, legs)
	require.NoError(t, err)
	assert.True(t, replayed)

	txs, _ := m.ListTransactions(ctx)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].Amount.Equal(dec("100")), "stored legs untouched")
}

func TestWriterAppend_Validation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)

	legs := batchLegs()
	legs[1].Amount = dec("-5")
	_, _, err := w.Append(ctx, legs)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, _, err = w.Append(ctx, nil)
	require.ErrorAs(t, err, &verr)

	txs, _ := m.ListTransactions(ctx)
	assert.Empty(t, txs)
}

func TestWriterAppend_CompensatesPartialWrite(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStore()
	fs.appendKeep = 2

	var rollbacks []string
	w := NewWriter(fs, nil)
	w.OnRollback = func(op string) { rollbacks = append(rollbacks, op) }

	_, _, err := w.Append(ctx, batchLegs())
	var serr *model.StoreWriteError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, errInjected)

	txs, _ := fs.ListTransactions(ctx)
	assert.Empty(t, txs, "no half-written batch may survive")
	assert.Equal(t, []string{"append"}, rollbacks)

	// The identical commit can be retried.
	_, _, err = w.Append(ctx, batchLegs())
	require.NoError(t, err)
	txs, _ = fs.ListTransactions(ctx)
	assert.Len(t, txs, 3)
}

func TestWriterReplace_Atomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)
	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	legs := batchLegs()
	legs[0].Amount = dec("75")
	legs[1].Amount = dec("75")
	require.NoError(t, w.Replace(ctx, legs[:2]))

	txs, _ := m.ListTransactions(ctx)
	assert.True(t, txs[0].Amount.Equal(dec("75")))
	assert.True(t, txs[1].Amount.Equal(dec("75")))
}

func TestWriterReplace_RestoresOnFailure(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStore()
	w := NewWriter(fs, nil)
	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	fs.failUpdate = 2
	legs := batchLegs()
	for i := range legs {
		legs[i].Amount = dec("1")
	}
	err = w.Replace(ctx, legs)
	var serr *model.StoreWriteError
	require.ErrorAs(t, err, &serr)

	txs, _ := fs.ListTransactions(ctx)
	assert.True(t, txs[0].Amount.Equal(dec("100")), "first leg restored")
	assert.True(t, txs[1].Amount.Equal(dec("100")))
}

func TestWriterReplace_Missing(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStore()
	w := NewWriter(fs, nil)

	err := w.Replace(ctx, batchLegs())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestWriterDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testAccounts, nil)
	w := NewWriter(m, nil)
	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, []string{"b1-00-divest", "b1-00-invest"}))
	txs, _ := m.ListTransactions(ctx)
	require.Len(t, txs, 1)
	assert.Equal(t, "b1-01-divest", txs[0].ID)
}

func TestWriterDelete_RestoresOnFailure(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStore()
	w := NewWriter(fs, nil)
	_, _, err := w.Append(ctx, batchLegs())
	require.NoError(t, err)

	fs.failDelete = 2
	err = w.Delete(ctx, []string{"b1-00-divest", "b1-00-invest"})
	var serr *model.StoreWriteError
	require.ErrorAs(t, err, &serr)

	txs, _ := fs.ListTransactions(ctx)
	assert.Len(t, txs, 3, "a failed group delete leaves the whole batch in place")
}
