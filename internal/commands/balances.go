package commands

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/balance"
	"github.com/cleared-dev/equity/internal/ledgerview"
)

func newBalancesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show equity balances by project and investor",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			snap, err := a.engine.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			bal := balance.Aggregate(snap.Transactions, snap.Accounts, snap.Projects)
			cur := a.cfg.Currency

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "PROJECT\tINVESTOR\tBALANCE")
			for _, p := range sortedKeys(bal.ProjectBalances, snap.ProjectName) {
				fmt.Fprintf(tw, "%s\t\t%s\n", snap.ProjectName(p), formatAmount(bal.ProjectBalances[p], cur))
				byInvestor := bal.InvestorProjectBalances[p]
				for _, inv := range sortedKeys(byInvestor, snap.Accounts.Name) {
					fmt.Fprintf(tw, "\t%s\t%s\n", snap.Accounts.Name(inv), formatAmount(byInvestor[inv], cur))
				}
			}
			fmt.Fprintln(tw, "\t\t")
			fmt.Fprintln(tw, "INVESTOR\t\tTOTAL")
			for _, inv := range sortedKeys(bal.InvestorTotalBalances, snap.Accounts.Name) {
				fmt.Fprintf(tw, "%s\t\t%s\n", snap.Accounts.Name(inv), formatAmount(bal.InvestorTotalBalances[inv], cur))
			}
			return tw.Flush()
		}),
	}
}

// sortedKeys orders ids by display name, then id.
func sortedKeys[V any](m map[string]V, name func(string) string) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(strings.Compare(name(a), name(b)), strings.Compare(a, b))
	})
	return keys
}

func newLedgerCommand(opts *options) *cobra.Command {
	var projectID, investorID, parentID string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the equity ledger of all investors, a project or an investor",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			scope := ledgerview.All()
			switch {
			case investorID != "":
				scope = ledgerview.ForInvestor(investorID, cmp.Or(parentID, projectID))
			case projectID != "":
				scope = ledgerview.ForProject(projectID)
			}
			rows, err := a.engine.Ledger(cmd.Context(), scope)
			if err != nil {
				return err
			}
			return printLedger(cmd, a, rows)
		}),
	}

	cmd.Flags().StringVar(&projectID, "project", "", "restrict to a project")
	cmd.Flags().StringVar(&investorID, "investor", "", "restrict to an investor's equity account")
	cmd.Flags().StringVar(&parentID, "parent", "", "project an investor ledger is opened under")

	return cmd
}

func printLedger(cmd *cobra.Command, a *app, rows []ledgerview.Row) error {
	cur := a.cfg.Currency
	amount := func(r ledgerview.Row, effect ledgerview.Effect) string {
		if r.Effect != effect {
			return ""
		}
		return formatAmount(r.Amount, cur)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "DATE\tTYPE\tDEPOSIT\tWITHDRAWAL\tBALANCE\tINFO")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format(dateLayout), r.PaymentType,
			amount(r, ledgerview.EffectDeposit), amount(r, ledgerview.EffectWithdrawal),
			formatAmount(r.Balance, cur), r.Info)
	}
	return tw.Flush()
}
