package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/equity/internal/model"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// formatAmount renders d in currency, e.g. "$1,234.50".
func formatAmount(d decimal.Decimal, currency string) string {
	return money.New(d.Mul(hundred).Round(0).IntPart(), currency).Display()
}

// formatPercent renders a 0..1 fraction as "66.67%".
func formatPercent(f decimal.Decimal) string {
	return f.Mul(hundred).StringFixed(2) + "%"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, model.Invalid(field, "%q is not a number", s)
	}
	return d, nil
}

// parseDate parses YYYY-MM-DD. An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, model.Invalid("date", "%q is not YYYY-MM-DD", s)
	}
	return t, nil
}

func printLegs(w io.Writer, legs []model.Transaction, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tFROM\tTO\tPROJECT\tDESCRIPTION")
	for _, t := range legs {
		from, to := t.FromAccountID, t.ToAccountID
		if !t.IsTransfer() {
			from, to = t.AccountID, ""
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format(dateLayout), t.Type, formatAmount(t.Amount, currency),
			from, to, t.ProjectID, t.Description)
	}
	return tw.Flush()
}
