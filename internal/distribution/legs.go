package distribution

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

// DescriptionPrefix starts the description of every distribution leg.
const DescriptionPrefix = "Profit distribution: "

// Commit describes where a distribution is written.
type Commit struct {
	CycleName  string
	ProjectID  string
	ClearingID string
	CategoryID string
	Date       time.Time
	BatchID    string
}

func (c Commit) validate() error {
	switch {
	case c.CycleName == "":
		return model.Invalid("cycle name", "must not be empty")
	case c.ClearingID == "":
		return model.Invalid("clearing account", "must not be empty")
	case c.BatchID == "":
		return model.Invalid("batch id", "must not be empty")
	case c.Date.IsZero():
		return model.Invalid("date", "must be set")
	}
	return nil
}

// Legs turns plans into an expense leg and a credit leg per investor, all
// sharing c.BatchID. Shares are rounded to cents so the legs add up to the
// rounded pool. Investors whose share rounds to zero get no legs.
func Legs(plans []model.DistributionPlan, c Commit) ([]model.Transaction, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	amounts := centShares(plans)
	desc := DescriptionPrefix + c.CycleName
	var legs []model.Transaction
	for i, p := range plans {
		amount := amounts[i]
		if !amount.IsPositive() {
			continue
		}
		legs = append(legs,
			model.Transaction{
				ID:          id.FormatLegID(c.BatchID, i, model.LegRoleExpense),
				Type:        model.TxExpense,
				Amount:      amount,
				Date:        c.Date,
				Description: desc,
				AccountID:   c.ClearingID,
				ProjectID:   c.ProjectID,
				CategoryID:  c.CategoryID,
				BatchID:     c.BatchID,
				Purpose:     model.PurposeDistribution,
				LegRole:     model.LegRoleExpense,
			},
			model.Transaction{
				ID:            id.FormatLegID(c.BatchID, i, model.LegRoleCredit),
				Type:          model.TxTransfer,
				Amount:        amount,
				Date:          c.Date,
				Description:   desc,
				AccountID:     c.ClearingID,
				FromAccountID: c.ClearingID,
				ToAccountID:   p.InvestorID,
				ProjectID:     c.ProjectID,
				BatchID:       c.BatchID,
				Purpose:       model.PurposeProfitShare,
				LegRole:       model.LegRoleCredit,
			},
		)
	}
	if len(legs) == 0 {
		return nil, model.Invalid("pool", "every share rounds to zero")
	}
	return legs, nil
}

// centShares rounds shares to cents by largest remainder: every share is
// truncated, then the missing cents go one each to the rows with the largest
// truncated fraction, earlier rows first on ties. The result adds up to the
// rounded pool and no share exceeds its exact value by a cent or more.
func centShares(plans []model.DistributionPlan) []decimal.Decimal {
	out := make([]decimal.Decimal, len(plans))
	sum := decimal.Zero
	order := make([]int, len(plans))
	for i, p := range plans {
		out[i] = p.ProfitShare.Truncate(2)
		sum = sum.Add(out[i])
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra := plans[a].ProfitShare.Sub(out[a])
		rb := plans[b].ProfitShare.Sub(out[b])
		return rb.Cmp(ra)
	})
	residue := Total(plans).Round(2).Sub(sum).Shift(2).IntPart()
	for k := 0; k < int(residue) && k < len(order); k++ {
		i := order[k]
		out[i] = out[i].Add(cent)
	}
	return out
}

var cent = decimal.New(1, -2)
