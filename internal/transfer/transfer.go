// Package transfer moves investor equity out of a project, either into
// another project through the clearing account or out to a payout account.
package transfer

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

// Kind is where transferred equity goes.
type Kind string

const (
	KindProject Kind = "PROJECT"
	KindPayout  Kind = "PAYOUT"
)

// Chart is the account lookup the planner needs.
type Chart interface {
	IsEquity(accountID string) bool
	IsClearing(accountID string) bool
	Name(accountID string) string
}

// Equity returns each investor's transferable equity in projectID.
// Transfers out of the investor's account count up. Transfers into it
// count up when they come from the clearing account and are not the
// outflow leg of an earlier move; every other inbound transfer counts down.
func Equity(projectID string, txs []model.Transaction, chart Chart) map[string]decimal.Decimal {
	equity := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsTransfer() || tx.ProjectID != projectID || tx.FromAccountID == tx.ToAccountID {
			continue
		}
		if chart.IsEquity(tx.FromAccountID) {
			equity[tx.FromAccountID] = equity[tx.FromAccountID].Add(tx.Amount)
		}
		if chart.IsEquity(tx.ToAccountID) {
			if chart.IsClearing(tx.FromAccountID) && !tx.IsMoveOut() {
				equity[tx.ToAccountID] = equity[tx.ToAccountID].Add(tx.Amount)
			} else {
				equity[tx.ToAccountID] = equity[tx.ToAccountID].Sub(tx.Amount)
			}
		}
	}
	return equity
}

// Plan lists the investors with positive equity in sourceProjectID, all
// selected for their full balance, ordered by investor name.
func Plan(sourceProjectID string, txs []model.Transaction, chart Chart) ([]model.TransferRow, error) {
	var rows []model.TransferRow
	for investor, bal := range Equity(sourceProjectID, txs, chart) {
		if !bal.IsPositive() {
			continue
		}
		rows = append(rows, model.TransferRow{
			InvestorID:     investor,
			CurrentEquity:  bal,
			TransferAmount: bal,
			Selected:       true,
		})
	}
	if len(rows) == 0 {
		return nil, &model.NoEquityError{ProjectID: sourceProjectID}
	}
	slices.SortFunc(rows, func(a, b model.TransferRow) int {
		return cmp.Or(
			strings.Compare(chart.Name(a.InvestorID), chart.Name(b.InvestorID)),
			strings.Compare(a.InvestorID, b.InvestorID),
		)
	})
	return rows, nil
}

// Commit describes how selected rows are written.
type Commit struct {
	Kind            Kind
	SourceProjectID string
	SourceName      string
	DestProjectID   string
	DestName        string
	ClearingID      string
	PayoutAccountID string
	Date            time.Time
	// NewID returns the batch id of a PROJECT row, or the leg id of a
	// PAYOUT row. Defaults to a fresh id per row.
	NewID func(investorID string) string
}

// Validate checks the commit settings other than the clearing account,
// which is resolved later for PROJECT transfers.
func (c Commit) Validate() error {
	if c.SourceProjectID == "" {
		return model.Invalid("source project", "must not be empty")
	}
	if c.Date.IsZero() {
		return model.Invalid("date", "must be set")
	}
	switch c.Kind {
	case KindProject:
		if c.DestProjectID == "" {
			return model.Invalid("destination project", "must not be empty")
		}
		if c.DestProjectID == c.SourceProjectID {
			return model.Invalid("destination project", "must differ from the source project")
		}
	case KindPayout:
		if c.PayoutAccountID == "" {
			return model.Invalid("payout account", "must not be empty")
		}
	default:
		return model.Invalid("transfer type", "unknown %q", c.Kind)
	}
	return nil
}

// Clamp limits a requested amount to [0, current].
func Clamp(amount, current decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(current) {
		return current
	}
	return amount
}

// Legs writes the selected rows. A PROJECT row becomes a two-leg batch of
// its own; a PAYOUT row becomes one unbatched transfer.
func Legs(rows []model.TransferRow, c Commit) ([][]model.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Kind == KindProject && c.ClearingID == "" {
		return nil, model.Invalid("clearing account", "must not be empty")
	}
	newID := c.NewID
	if newID == nil {
		newID = func(string) string { return id.New() }
	}
	source := cmp.Or(c.SourceName, c.SourceProjectID)
	dest := cmp.Or(c.DestName, c.DestProjectID)

	var batches [][]model.Transaction
	for _, r := range rows {
		if !r.Selected {
			continue
		}
		amount := Clamp(r.TransferAmount, r.CurrentEquity).Round(2)
		if !amount.IsPositive() {
			continue
		}

		if c.Kind == KindPayout {
			batches = append(batches, []model.Transaction{{
				ID:            newID(r.InvestorID),
				Type:          model.TxTransfer,
				Amount:        amount,
				Date:          c.Date,
				Description:   "Equity payout from " + source,
				AccountID:     c.PayoutAccountID,
				FromAccountID: c.PayoutAccountID,
				ToAccountID:   r.InvestorID,
				ProjectID:     c.SourceProjectID,
				Purpose:       model.PurposePayout,
			}})
			continue
		}

		batchID := newID(r.InvestorID)
		batches = append(batches, []model.Transaction{
			{
				ID:            id.FormatLegID(batchID, 0, model.LegRoleDivest),
				Type:          model.TxTransfer,
				Amount:        amount,
				Date:          c.Date,
				Description:   "Equity Move out to " + dest,
				AccountID:     c.ClearingID,
				FromAccountID: c.ClearingID,
				ToAccountID:   r.InvestorID,
				ProjectID:     c.SourceProjectID,
				BatchID:       batchID,
				Purpose:       model.PurposeEquityMove,
				LegRole:       model.LegRoleDivest,
			},
			{
				ID:            id.FormatLegID(batchID, 0, model.LegRoleInvest),
				Type:          model.TxTransfer,
				Amount:        amount,
				Date:          c.Date,
				Description:   "Equity Move in from " + source,
				AccountID:     r.InvestorID,
				FromAccountID: r.InvestorID,
				ToAccountID:   c.ClearingID,
				ProjectID:     c.DestProjectID,
				BatchID:       batchID,
				Purpose:       model.PurposeEquityMove,
				LegRole:       model.LegRoleInvest,
			},
		})
	}
	if len(batches) == 0 {
		return nil, model.Invalid("selection", "no investor selected with a positive amount")
	}
	return batches, nil
}
