package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/engine"
	"github.com/cleared-dev/equity/internal/model"
	"github.com/cleared-dev/equity/internal/transfer"
)

func newTransferCommand(opts *options) *cobra.Command {
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move equity between projects or pay it out",
	}
	transferCmd.AddCommand(newTransferPlanCommand(opts), newTransferCommitCommand(opts))
	return transferCmd
}

func newTransferPlanCommand(opts *options) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the transferable equity of a project",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			rows, err := a.engine.PlanTransfer(cmd.Context(), source)
			if err != nil {
				return err
			}
			snap, err := a.engine.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "INVESTOR\tID\tEQUITY")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", snap.Accounts.Name(r.InvestorID), r.InvestorID, formatAmount(r.CurrentEquity, a.cfg.Currency))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&source, "from", "", "source project (required)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newTransferCommitCommand(opts *options) *cobra.Command {
	var source, dest, kind, date, retryKey string
	var only []string
	var amounts map[string]string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Write an equity move or payout",
		Long: "Write an equity move (--kind project) or payout (--kind payout). Every investor\n" +
			"with equity is selected for their full balance unless --only or --amount narrow it.",
		Args: cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			rows, err := a.engine.PlanTransfer(cmd.Context(), source)
			if err != nil {
				return err
			}
			if err := selectRows(rows, only, amounts); err != nil {
				return err
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			legs, err := a.engine.CommitTransfer(cmd.Context(), engine.TransferRequest{
				Kind:            transfer.Kind(strings.ToUpper(kind)),
				SourceProjectID: source,
				DestProjectID:   dest,
				Rows:            rows,
				Date:            d,
				RetryKey:        retryKey,
			})
			if err != nil {
				return err
			}
			return printLegs(cmd.OutOrStdout(), legs, a.cfg.Currency)
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&source, "from", "", "source project (required)")
	flags.StringVar(&dest, "to", "", "destination project of a project move")
	flags.StringVar(&kind, "kind", string(transfer.KindProject), "project or payout")
	flags.StringSliceVar(&only, "only", nil, "investor ids to transfer; all when empty")
	flags.StringToStringVar(&amounts, "amount", nil, "investor=amount overrides, clamped to the investor's equity")
	flags.StringVar(&date, "date", "", "booking date, YYYY-MM-DD; defaults to today")
	flags.StringVar(&retryKey, "retry-key", "", "idempotency key")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// selectRows applies the --only and --amount flags to the planned rows.
func selectRows(rows []model.TransferRow, only []string, amounts map[string]string) error {
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		known[r.InvestorID] = true
	}
	for _, inv := range only {
		if !known[inv] {
			return model.Invalid("only", "%s has no equity in the source project", inv)
		}
	}
	for inv, s := range amounts {
		if !known[inv] {
			return model.Invalid("amount", "%s has no equity in the source project", inv)
		}
		if _, err := parseAmount("amount", s); err != nil {
			return err
		}
	}

	for i := range rows {
		r := &rows[i]
		if len(only) > 0 {
			r.Selected = slices.Contains(only, r.InvestorID)
		}
		if s, ok := amounts[r.InvestorID]; ok {
			r.TransferAmount, _ = parseAmount("amount", s)
		}
	}
	return nil
}
