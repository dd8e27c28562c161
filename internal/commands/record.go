package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/equity/internal/id"
	"github.com/cleared-dev/equity/internal/model"
)

func newProjectCommand(opts *options) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var projectID string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			p := model.Project{ID: projectID, Name: args[0]}
			if p.ID == "" {
				p.ID = id.New()
			}
			if err := a.store.CreateProject(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&projectID, "id", "", "project id (generated when empty)")
	projectCmd.AddCommand(add)
	return projectCmd
}

func newAccountCommand(opts *options) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	var accountID, accountType string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account; investors are EQUITY accounts",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, a *app, args []string) error {
			acct := model.Account{
				ID:   accountID,
				Name: args[0],
				Type: model.AccountType(strings.ToUpper(accountType)),
			}
			switch acct.Type {
			case model.AccountTypeEquity, model.AccountTypeBank, model.AccountTypeOther:
			default:
				return model.Invalid("type", "%q is not one of equity, bank, other", accountType)
			}
			if acct.ID == "" {
				acct.ID = id.NewAccountID()
			}
			if err := a.store.CreateAccount(cmd.Context(), acct); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acct.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&accountID, "id", "", "account id (generated when empty)")
	add.Flags().StringVar(&accountType, "type", "equity", "account type: equity, bank or other")
	accountCmd.AddCommand(add)
	return accountCmd
}

type recordFlags struct {
	txType      string
	amount      string
	date        string
	account     string
	from        string
	to          string
	project     string
	category    string
	description string
	purpose     string
}

func newRecordCommand(opts *options) *cobra.Command {
	var f recordFlags

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a single transaction",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, a *app, _ []string) error {
			tx, err := f.transaction()
			if err != nil {
				return err
			}
			if tx.Date.IsZero() {
				return model.Invalid("date", "is required")
			}
			written, err := a.engine.Record(cmd.Context(), tx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written.ID)
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&f.txType, "type", "transfer", "income, expense, transfer or loan")
	flags.StringVar(&f.amount, "amount", "", "positive amount")
	flags.StringVar(&f.date, "date", "", "date, YYYY-MM-DD")
	flags.StringVar(&f.account, "account", "", "account of an income or expense")
	flags.StringVar(&f.from, "from", "", "source account of a transfer")
	flags.StringVar(&f.to, "to", "", "destination account of a transfer")
	flags.StringVar(&f.project, "project", "", "project id")
	flags.StringVar(&f.category, "category", "", "category id")
	flags.StringVar(&f.description, "description", "", "description")
	flags.StringVar(&f.purpose, "purpose", "", "investment, withdrawal, pm_fee, ...")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func (f recordFlags) transaction() (model.Transaction, error) {
	amount, err := parseAmount("amount", f.amount)
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := parseDate(f.date)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Type:          model.TxType(strings.ToUpper(f.txType)),
		Amount:        amount,
		Date:          date,
		Description:   f.description,
		AccountID:     f.account,
		FromAccountID: f.from,
		ToAccountID:   f.to,
		ProjectID:     f.project,
		CategoryID:    f.category,
		Purpose:       model.Purpose(f.purpose),
	}, nil
}
