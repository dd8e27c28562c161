package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/batch"
	"github.com/cleared-dev/equity/internal/model"
)

func newBatchCommand(opts *options) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Inspect, edit and delete multi-leg batches",
	}
	batchCmd.AddCommand(newBatchShowCommand(opts), newBatchEditCommand(opts), newBatchDeleteCommand(opts))
	return batchCmd
}

func newBatchShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Show a transaction's batch and how it would be edited",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			b, err := a.engine.ResolveBatch(cmd.Context(), args[0])
			var amb *model.AmbiguousBatchError
			switch {
			case errors.As(err, &amb):
				fmt.Fprintf(cmd.OutOrStdout(), "Batch %s: not editable as a group (%d legs)\n", amb.BatchID, amb.Legs)
				return printLegs(cmd.OutOrStdout(), append([]model.Transaction{b.Main}, b.Siblings...), a.cfg.Currency)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", b.Mode)
			return printLegs(cmd.OutOrStdout(), b.Legs(), a.cfg.Currency)
		}),
	}
}

func newBatchEditCommand(opts *options) *cobra.Command {
	var amount, date, description, investor, project, sourceProject, destProject, category string

	cmd := &cobra.Command{
		Use:   "edit <transaction-id>",
		Short: "Edit a transaction together with the rest of its batch",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			var fields batch.EditFields
			changed := cmd.Flags().Changed
			if changed("amount") {
				d, err := parseAmount("amount", amount)
				if err != nil {
					return err
				}
				fields.Amount = &d
			}
			if changed("date") {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				fields.Date = &d
			}
			for name, dst := range map[string]**string{
				"description":    &fields.Description,
				"investor":       &fields.InvestorID,
				"project":        &fields.ProjectID,
				"source-project": &fields.SourceProjectID,
				"dest-project":   &fields.DestProjectID,
				"category":       &fields.CategoryID,
			} {
				if changed(name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = &v
				}
			}

			legs, err := a.engine.EditBatch(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return printLegs(cmd.OutOrStdout(), legs, a.cfg.Currency)
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&amount, "amount", "", "new amount for every leg")
	flags.StringVar(&date, "date", "", "new date, YYYY-MM-DD")
	flags.StringVar(&description, "description", "", "new description")
	flags.StringVar(&investor, "investor", "", "new investor equity account")
	flags.StringVar(&project, "project", "", "new project of a simple or distribution batch")
	flags.StringVar(&sourceProject, "source-project", "", "new source project of an equity move")
	flags.StringVar(&destProject, "dest-project", "", "new destination project of an equity move")
	flags.StringVar(&category, "category", "", "new category of a simple transaction")
	return cmd
}

func newBatchDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction and every leg of its batch",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			ids, err := a.engine.DeleteGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}
