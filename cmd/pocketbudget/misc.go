package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pocketbudget/internal/core"
	"pocketbudget/internal/services"
	"pocketbudget/internal/streak"
)

var profileFlags services.ProfileInput

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every budget whose period has elapsed",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the daily streak and earned badges",
	Args:  cobra.NoArgs,
	RunE:  runStreak,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the activity log grouped by day",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

var splitCmd = &cobra.Command{
	Use:   "split <income>",
	Short: "Split an income 50/30/20 into needs, wants and savings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSplit,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set name and currency, completing onboarding on first use",
	Args:  cobra.NoArgs,
	RunE:  runProfileSet,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileFlags.Name, "name", "", "Your name")
	profileSetCmd.Flags().StringVar(&profileFlags.Currency, "currency", core.DefaultCurrency, "ISO 4217 currency code")
	profileCmd.AddCommand(profileSetCmd)

	rootCmd.AddCommand(resetCmd, streakCmd, logCmd, splitCmd, profileCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	report, err := resetReport(cmd.Context(), app.Resets, appOpenReport, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Checked %d budgets: %d reset, %d failed, %d without a period\n",
		report.Checked, report.Reset, report.Failed, report.Skipped)
	return nil
}

type resetEvaluator interface {
	EvaluateAndResetAll(ctx context.Context, now time.Time) (services.ResetReport, error)
}

// resetReport returns the pass already run on app open, so its resets are
// reported rather than hidden by a second, empty pass. Without one it
// evaluates now.
func resetReport(ctx context.Context, eval resetEvaluator, opened *services.ResetReport, now time.Time) (services.ResetReport, error) {
	if opened != nil {
		return *opened, nil
	}
	return eval.EvaluateAndResetAll(ctx, now)
}

func runStreak(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	n, err := app.Streak.Current(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current streak: %s\n", pluralDays(n))
	if last, ok, err := app.Streak.LastActiveDate(ctx); err == nil && ok {
		fmt.Fprintf(out, "Last active:    %s\n", last)
	}

	badges := streak.Badges(n)
	if len(badges) == 0 {
		fmt.Fprintf(out, "Next badge at %s.\n", pluralDays(streak.Milestones[0]))
		return nil
	}
	names := make([]string, len(badges))
	for i, b := range badges {
		names[i] = humanize.Ordinal(b) + " day"
	}
	fmt.Fprintf(out, "Badges:         %s\n", strings.Join(names, ", "))
	return nil
}

func runLog(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	groups := app.Activity.ListGroupedByDay(time.Local)
	if len(groups) == 0 {
		fmt.Fprintln(out, "No activity yet.")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintln(out, g.Date)
		for _, e := range g.Entries {
			fmt.Fprintf(out, "  %s  %-8s %s (%s)\n",
				e.Timestamp.Local().Format("15:04"), e.Type, e.Message, humanize.Time(e.Timestamp))
		}
	}
	return nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	income, err := core.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", err, args[0])
	}
	user, err := app.Profiles.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	s := core.SplitIncome(income)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Needs   (50%%): %s\n", formatMoney(s.Needs, user.Currency))
	fmt.Fprintf(out, "Wants   (30%%): %s\n", formatMoney(s.Wants, user.Currency))
	fmt.Fprintf(out, "Savings (20%%): %s\n", formatMoney(s.Savings, user.Currency))
	return nil
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	u, err := app.Profiles.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !u.Onboarded {
		fmt.Fprintln(out, "Not onboarded yet. Run: pocketbudget profile set --name <name> --currency <code>")
	}
	name := u.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(out, "Name:     %s\nCurrency: %s\n", name, u.Currency)
	return nil
}

func runProfileSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	current, err := app.Profiles.GetProfile(ctx)
	if err != nil {
		return err
	}
	var u core.User
	if current.Onboarded {
		u, err = app.Profiles.UpdateProfile(ctx, profileFlags)
	} else {
		u, err = app.Profiles.CompleteOnboarding(ctx, profileFlags)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for %s (%s)\n", u.Name, u.Currency)
	return nil
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}
