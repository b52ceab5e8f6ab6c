package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pocketbudget/internal/core"
	"pocketbudget/internal/services"
)

var (
	txFlags    services.TransactionInput
	txDateFlag string
	txTypeFlag string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Log and list transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an expense or income against a budget",
	Args:  cobra.NoArgs,
	RunE:  runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list <budget-id>",
	Short: "List a budget's transactions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxList,
}

var spentCmd = &cobra.Command{
	Use:   "spent <budget-id>",
	Short: "Show how much of a budget has been spent",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpent,
}

func init() {
	txAddCmd.Flags().Int64VarP(&txFlags.BudgetID, "budget", "b", 0, "Budget id")
	txAddCmd.Flags().StringVar(&txFlags.Type, "type", "expense", "expense or income")
	txAddCmd.Flags().StringVarP(&txFlags.Amount, "amount", "a", "", "Amount")
	txAddCmd.Flags().StringVarP(&txFlags.Category, "category", "c", "", "Category (default other)")
	txAddCmd.Flags().StringVarP(&txFlags.Title, "title", "t", "", "Optional title")
	txAddCmd.Flags().StringVar(&txDateFlag, "date", "", "Date as YYYY-MM-DD (default now)")

	txListCmd.Flags().StringVar(&txTypeFlag, "type", "", "Only list expense or income")

	txCmd.AddCommand(txAddCmd, txListCmd)
	rootCmd.AddCommand(txCmd, spentCmd)
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
	date, err := parseDate(txDateFlag)
	if err != nil {
		return err
	}
	in := txFlags
	in.Date = date

	t, err := app.Transactions.AddTransaction(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s #%d of %s (%s) on %s\n",
		t.Type, t.ID, core.FormatAmount(t.Amount), t.Category, core.CalendarDate(t.Date))
	return nil
}

func runTxList(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	txs, err := app.Transactions.ListTransactions(cmd.Context(), id, txTypeFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions.")
		return nil
	}
	for _, t := range txs {
		title := t.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(out, "#%-4d %s  %-7s %12s  %-12s %s\n",
			t.ID, core.CalendarDate(t.Date.Local()), t.Type, core.FormatAmount(t.Amount), t.Category, title)
	}
	return nil
}

func runSpent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	user, err := app.Profiles.GetProfile(ctx)
	if err != nil {
		return err
	}
	p, err := app.Spend.Progress(ctx, id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Spent:     %s\n", formatMoney(p.Spent, user.Currency))
	fmt.Fprintf(out, "Budgeted:  %s\n", formatMoney(p.Budgeted, user.Currency))
	fmt.Fprintf(out, "Remaining: %s\n", formatMoney(p.Remaining, user.Currency))
	fmt.Fprintf(out, "%s %.1f%%\n", progressBar(p.Percentage, 30), p.Percentage)
	return nil
}
