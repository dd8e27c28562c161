package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// InvariantError describes a single invariant violation on a transaction.
type InvariantError struct {
	Invariant   int
	TxID        string
	Description string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TxID, e.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id string) bool
}

var hundred = decimal.NewFromInt(100)

// ValidateTransactions enforces the log invariants on a set of new or
// replacement transactions.
func ValidateTransactions(txs []model.Transaction, accounts AccountChecker) []InvariantError {
	var errs []InvariantError
	seen := make(map[string]bool, len(txs))

	for _, tx := range txs {
		fail := func(invariant int, format string, args ...any) {
			errs = append(errs, InvariantError{Invariant: invariant, TxID: tx.ID, Description: fmt.Sprintf(format, args...)})
		}

		// Invariant 1: Unique, non-empty ids.
		if tx.ID == "" {
			fail(1, "missing id")
		} else if seen[tx.ID] {
			fail(1, "duplicate id")
		}
		seen[tx.ID] = true

		// Invariant 2: Amount is positive with at most 2 decimal places.
		if !tx.Amount.IsPositive() {
			fail(2, "amount %s must be positive", tx.Amount)
		} else if !tx.Amount.Mul(hundred).Equal(tx.Amount.Mul(hundred).Floor()) {
			fail(2, "amount %s has more than 2 decimal places", tx.Amount)
		}

		// Invariant 3: Known type and a date.
		switch tx.Type {
		case model.TxIncome, model.TxExpense, model.TxTransfer, model.TxLoan:
		default:
			fail(3, "unknown type %q", tx.Type)
		}
		if tx.Date.IsZero() {
			fail(3, "missing date")
		}

		// Invariant 4: Transfers name two distinct accounts and mirror the source.
		if tx.IsTransfer() {
			switch {
			case tx.FromAccountID == "" || tx.ToAccountID == "":
				fail(4, "transfer needs both from and to accounts")
			case tx.FromAccountID == tx.ToAccountID:
				fail(4, "transfer from and to the same account %s", tx.FromAccountID)
			case tx.AccountID != tx.FromAccountID:
				fail(4, "account %s does not mirror source %s", tx.AccountID, tx.FromAccountID)
			}
		} else if tx.AccountID == "" {
			fail(4, "missing account")
		}

		// Invariant 5: Valid account references.
		for _, ref := range []string{tx.AccountID, tx.FromAccountID, tx.ToAccountID} {
			if ref != "" && !accounts.Exists(ref) {
				fail(5, "unknown account %s", ref)
			}
		}
	}
	return errs
}

// validationFailure folds invariant errors into one ValidationError.
func validationFailure(errs []InvariantError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &model.ValidationError{Field: "transactions", Reason: strings.Join(msgs, "; ")}
}
