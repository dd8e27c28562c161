package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

// EditFields holds the new values of an edit. Nil fields are left as they are.
type EditFields struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
	// InvestorID rewires the investor side of distribution and move legs.
	InvestorID *string
	// ProjectID applies to simple transactions and distribution legs.
	ProjectID *string
	// SourceProjectID and DestProjectID apply to the divest and invest
	// legs of a move.
	SourceProjectID *string
	DestProjectID   *string
	// CategoryID applies to simple transactions only.
	CategoryID *string
}

func (f EditFields) validate(mode Mode) error {
	if f.Amount != nil && !f.Amount.IsPositive() {
		return model.Invalid("amount", "must be positive, got %s", f.Amount)
	}
	if f.InvestorID != nil && *f.InvestorID == "" {
		return model.Invalid("investor", "must not be empty")
	}
	if mode != ModeSimple && f.CategoryID != nil {
		return model.Invalid("category", "applies only to simple transactions")
	}
	switch mode {
	case ModeMove:
		if f.ProjectID != nil {
			return model.Invalid("project", "an equity move has a source and a destination project")
		}
		if f.SourceProjectID != nil && *f.SourceProjectID == "" {
			return model.Invalid("source project", "must not be empty")
		}
		if f.DestProjectID != nil && *f.DestProjectID == "" {
			return model.Invalid("destination project", "must not be empty")
		}
	default:
		if f.SourceProjectID != nil || f.DestProjectID != nil {
			return model.Invalid("project", "source and destination apply only to equity moves")
		}
		if mode == ModeSimple && f.InvestorID != nil {
			return model.Invalid("investor", "only batch legs can be rewired to another investor")
		}
	}
	return nil
}

// CommitEdit applies fields to every leg of b and returns the rewritten
// legs, ids unchanged.
func CommitEdit(b Batch, fields EditFields) ([]model.Transaction, error) {
	if err := fields.validate(b.Mode); err != nil {
		return nil, err
	}

	switch b.Mode {
	case ModeMove:
		divest, invest := b.Divest, b.Invest
		fields.applyCommon(&divest)
		fields.applyCommon(&invest)
		if fields.InvestorID != nil {
			divest.ToAccountID = *fields.InvestorID
			invest.FromAccountID = *fields.InvestorID
			invest.AccountID = *fields.InvestorID
		}
		if fields.SourceProjectID != nil {
			divest.ProjectID = *fields.SourceProjectID
		}
		if fields.DestProjectID != nil {
			invest.ProjectID = *fields.DestProjectID
		}
		return []model.Transaction{divest, invest}, nil

	case ModeDist:
		expense, credit := b.Expense, b.Credit
		fields.applyCommon(&expense)
		fields.applyCommon(&credit)
		if fields.ProjectID != nil {
			expense.ProjectID = *fields.ProjectID
			credit.ProjectID = *fields.ProjectID
		}
		if fields.InvestorID != nil {
			credit.ToAccountID = *fields.InvestorID
		}
		return []model.Transaction{expense, credit}, nil
	}

	tx := b.Main
	fields.applyCommon(&tx)
	if fields.ProjectID != nil {
		tx.ProjectID = *fields.ProjectID
	}
	if fields.CategoryID != nil {
		tx.CategoryID = *fields.CategoryID
	}
	return []model.Transaction{tx}, nil
}

func (f EditFields) applyCommon(tx *model.Transaction) {
	if f.Amount != nil {
		tx.Amount = *f.Amount
	}
	if f.Date != nil {
		tx.Date = *f.Date
	}
	if f.Description != nil {
		tx.Description = *f.Description
	}
}
