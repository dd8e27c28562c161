package commands

import (
	"github.com/spf13/cobra"
)

func newMetricsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the engine metrics in Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			return writeMetrics(cmd.OutOrStdout(), a.registry)
		}),
	}
}
