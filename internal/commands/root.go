package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "equity",
		Short:   "Investor equity ledger and profit distribution",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", ".", "data directory holding equity.yaml")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overriding the config")
	flags.BoolVar(&opts.printMetrics, "metrics", false, "print engine metrics to stderr after the command")

	rootCmd.AddCommand(
		newInitCommand(),
		newProjectCommand(opts),
		newAccountCommand(opts),
		newRecordCommand(opts),
		newBalancesCommand(opts),
		newLedgerCommand(opts),
		newDistributeCommand(opts),
		newTransferCommand(opts),
		newBatchCommand(opts),
		newMetricsCommand(opts),
	)

	return rootCmd
}
