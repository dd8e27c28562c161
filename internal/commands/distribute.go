package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/distribution"
	"github.com/cleared-dev/equity/internal/engine"
	"github.com/cleared-dev/equity/internal/model"
)

func newDistributeCommand(opts *options) *cobra.Command {
	distCmd := &cobra.Command{
		Use:   "distribute",
		Short: "Plan and commit profit distributions",
	}
	distCmd.AddCommand(newDistributePlanCommand(opts), newDistributeCommitCommand(opts))
	return distCmd
}

type poolFlags struct {
	projectID string
	pool      string
}

func (f *poolFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectID, "project", "", "project to distribute (required)")
	cmd.Flags().StringVar(&f.pool, "pool", "", "amount to distribute; defaults to the project's available profit")
	_ = cmd.MarkFlagRequired("project")
}

func (f *poolFlags) plan(cmd *cobra.Command, a *app) ([]model.DistributionPlan, error) {
	var pool *decimal.Decimal
	if f.pool != "" {
		d, err := parseAmount("pool", f.pool)
		if err != nil {
			return nil, err
		}
		pool = &d
	}
	return a.engine.PlanDistribution(cmd.Context(), f.projectID, pool)
}

func newDistributePlanCommand(opts *options) *cobra.Command {
	var f poolFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how a pool would be split",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			plans, err := f.plan(cmd, a)
			if err != nil {
				return err
			}
			return printPlan(cmd, a, plans)
		}),
	}
	f.register(cmd)
	return cmd
}

func newDistributeCommitCommand(opts *options) *cobra.Command {
	var f poolFlags
	var cycle, date, retryKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Plan and write a distribution",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			plans, err := f.plan(cmd, a)
			if err != nil {
				return err
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			legs, err := a.engine.CommitDistribution(cmd.Context(), engine.DistributionRequest{
				ProjectID: f.projectID,
				CycleName: cycle,
				Plans:     plans,
				Date:      d,
				RetryKey:  retryKey,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch %s: %d legs\n", legs[0].BatchID, len(legs))
			return printLegs(cmd.OutOrStdout(), legs, a.cfg.Currency)
		}),
	}
	f.register(cmd)
	cmd.Flags().StringVar(&cycle, "cycle", "", "cycle name, e.g. \"2025 Q2\" (required)")
	cmd.Flags().StringVar(&date, "date", "", "booking date, YYYY-MM-DD; defaults to today")
	cmd.Flags().StringVar(&retryKey, "retry-key", "", "idempotency key; repeating a commit with the same key writes nothing new")
	_ = cmd.MarkFlagRequired("cycle")
	return cmd
}

func printPlan(cmd *cobra.Command, a *app, plans []model.DistributionPlan) error {
	snap, err := a.engine.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	cur := a.cfg.Currency

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "INVESTOR\tPRINCIPAL\tSHARE\tPROFIT\tNEW BALANCE")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			snap.Accounts.Name(p.InvestorID), formatAmount(p.Principal, cur), formatPercent(p.SharePercentage),
			formatAmount(p.ProfitShare, cur), formatAmount(p.NewEquityBalance, cur))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", formatAmount(distribution.Total(plans), cur))
	return tw.Flush()
}
