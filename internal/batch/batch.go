// Package batch finds the sibling legs of a transaction and keeps them
// consistent when the transaction is edited or deleted.
package batch

import (
	"fmt"

	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

// Mode is the economic shape of a batch.
type Mode string

const (
	ModeSimple Mode = "SIMPLE"
	ModeDist   Mode = "BATCH_DIST"
	ModeMove   Mode = "BATCH_MOVE"
)

// Batch is a resolved transaction and its siblings. For BATCH_DIST the
// Expense and Credit legs hold the distribution pair the main transaction
// belongs to; for BATCH_MOVE Divest and Invest hold the two move legs.
type Batch struct {
	Main     model.Transaction
	Siblings []model.Transaction
	Mode     Mode

	Expense model.Transaction
	Credit  model.Transaction
	Divest  model.Transaction
	Invest  model.Transaction
}

// Legs returns the transactions an edit of the batch rewrites.
func (b Batch) Legs() []model.Transaction {
	switch b.Mode {
	case ModeDist:
		return []model.Transaction{b.Expense, b.Credit}
	case ModeMove:
		return []model.Transaction{b.Divest, b.Invest}
	}
	return []model.Transaction{b.Main}
}

// Resolve finds mainID in txs and works out its batch. A batch whose mode
// cannot be inferred yields an *model.AmbiguousBatchError; the returned
// Batch still carries Main and Siblings so callers can show them.
func Resolve(mainID string, txs []model.Transaction) (Batch, error) {
	var b Batch
	found := false
	for _, tx := range txs {
		if tx.ID == mainID {
			b.Main = tx
			found = true
			break
		}
	}
	if !found {
		return Batch{}, fmt.Errorf("transaction %s: %w", mainID, model.ErrNotFound)
	}

	b.Mode = ModeSimple
	if !b.Main.InBatch() {
		return b, nil
	}
	for _, tx := range txs {
		if tx.BatchID == b.Main.BatchID && tx.ID != b.Main.ID {
			b.Siblings = append(b.Siblings, tx)
		}
	}
	if len(b.Siblings) == 0 {
		return b, nil
	}

	first := b.Siblings[0]
	switch {
	case b.Main.IsProfitTagged() || first.IsProfitTagged():
		return b.resolveDist()
	case b.Main.IsMoveTagged() || first.IsMoveTagged():
		return b.resolveMove()
	}
	return b, b.ambiguous()
}

func (b Batch) ambiguous() error {
	return &model.AmbiguousBatchError{BatchID: b.Main.BatchID, Legs: len(b.Siblings) + 1}
}

func (b Batch) resolveMove() (Batch, error) {
	b.Mode = ModeMove
	var divest, invest []model.Transaction
	for _, tx := range append([]model.Transaction{b.Main}, b.Siblings...) {
		switch tx.Role() {
		case model.LegRoleDivest:
			divest = append(divest, tx)
		case model.LegRoleInvest:
			invest = append(invest, tx)
		}
	}
	if len(divest) != 1 || len(invest) != 1 {
		b.Mode = ModeSimple
		return b, b.ambiguous()
	}
	b.Divest, b.Invest = divest[0], invest[0]
	return b, nil
}

func (b Batch) resolveDist() (Batch, error) {
	b.Mode = ModeDist
	partner, ok := b.distPartner()
	if !ok {
		b.Mode = ModeSimple
		return b, b.ambiguous()
	}
	if b.Main.Type == model.TxExpense {
		b.Expense, b.Credit = b.Main, partner
	} else {
		b.Expense, b.Credit = partner, b.Main
	}
	return b, nil
}

// distPartner finds the other half of the main leg's expense/credit pair:
// the sibling in the same leg group, or for older ids the first sibling of
// the opposite type, preferring one with the same amount.
func (b Batch) distPartner() (model.Transaction, bool) {
	want := model.TxTransfer
	switch b.Main.Type {
	case model.TxExpense:
	case model.TxTransfer:
		want = model.TxExpense
	default:
		return model.Transaction{}, false
	}

	if group := id.LegGroup(b.Main.ID); group != "" {
		for _, s := range b.Siblings {
			if s.Type == want && id.LegGroup(s.ID) == group {
				return s, true
			}
		}
	}

	var fallback *model.Transaction
	for i, s := range b.Siblings {
		if s.Type != want {
			continue
		}
		if s.Amount.Equal(b.Main.Amount) {
			return s, true
		}
		if fallback == nil {
			fallback = &b.Siblings[i]
		}
	}
	if fallback == nil {
		return model.Transaction{}, false
	}
	return *fallback, true
}

// Members returns every transaction deleted together with main: main itself
// and all transactions sharing its batch id.
func Members(main model.Transaction, txs []model.Transaction) []model.Transaction {
	if !main.InBatch() {
		return []model.Transaction{main}
	}
	var out []model.Transaction
	for _, tx := range txs {
		if tx.BatchID == main.BatchID {
			out = append(out, tx)
		}
	}
	return out
}
