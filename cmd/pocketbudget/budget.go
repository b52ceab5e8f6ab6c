package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pocketbudget/internal/core"
	"pocketbudget/internal/services"
)

var budgetFlags services.BudgetInput

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Create, list, edit and delete budgets",
}

var budgetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetCreate,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets with what has been spent",
	Args:  cobra.NoArgs,
	RunE:  runBudgetList,
}

var budgetEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a budget's title, colours, amount and duration",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetEdit,
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a budget and all of its transactions",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetDelete,
}

func init() {
	for _, c := range []*cobra.Command{budgetCreateCmd, budgetEditCmd} {
		c.Flags().StringVarP(&budgetFlags.Title, "title", "t", "", "Budget title")
		c.Flags().StringVarP(&budgetFlags.Amount, "amount", "a", "", "Budget amount, e.g. 250 or 99,90")
		c.Flags().StringVarP(&budgetFlags.Duration, "duration", "d", "", "Reset period: weekly, monthly or empty")
		c.Flags().StringVar(&budgetFlags.ThemeColor, "theme", "", "Theme colour token")
		c.Flags().StringVar(&budgetFlags.ContentColor, "content", "", "Content colour token")
	}
	budgetCmd.AddCommand(budgetCreateCmd, budgetListCmd, budgetEditCmd, budgetDeleteCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetCreate(cmd *cobra.Command, _ []string) error {
	b, err := app.Budgets.CreateBudget(cmd.Context(), budgetFlags)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created budget #%d %s (%s, %s)\n",
		b.ID, b.Title, core.FormatAmount(b.Amount), formatDuration(b.Duration))
	return nil
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	user, err := app.Profiles.GetProfile(ctx)
	if err != nil {
		return err
	}
	budgets, err := app.Budgets.ListBudgets(ctx)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Fprintln(out, "No budgets yet. Create one with: pocketbudget budget create")
		return nil
	}

	now := time.Now()
	for _, b := range budgets {
		p, err := app.Spend.Progress(ctx, b.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "#%-3d %-20s %s %5.1f%%  spent %s of %s  (%s, reset %s)\n",
			b.ID, b.Title,
			progressBar(p.Percentage, 20), p.Percentage,
			formatMoney(p.Spent, user.Currency), formatMoney(p.Budgeted, user.Currency),
			formatDuration(b.Duration), formatLastReset(b, now))
	}
	return nil
}

func runBudgetEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	b, err := app.Budgets.EditBudget(cmd.Context(), id, budgetFlags)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated budget #%d %s (%s, %s)\n",
		b.ID, b.Title, core.FormatAmount(b.Amount), formatDuration(b.Duration))
	return nil
}

func runBudgetDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Budgets.DeleteBudget(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget #%d\n", id)
	return nil
}
