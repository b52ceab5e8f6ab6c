package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pocketbudget/internal/backend"
	"pocketbudget/internal/cli"
	"pocketbudget/internal/config"
	"pocketbudget/internal/log"
	"pocketbudget/internal/services"
)

var (
	flagSkipOpen bool
	flagVerbose  bool
)

// Set up by the root pre-run for every subcommand.
var (
	logger *slog.Logger
	result *backend.BackendResult
	app    *backend.App

	// appOpenReport is the reset pass run on app open; nil when skipped or failed.
	appOpenReport *services.ResetReport
)

var rootCmd = &cobra.Command{
	Use:   "pocketbudget",
	Short: "Personal budgets with periodic resets",
	Long: "Track budgets, expenses and income from the terminal. Every invocation counts\n" +
		"as an app open: due budgets are reset and the daily streak is advanced.",
	SilenceUsage:      true,
	PersistentPreRunE: openApp,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeApp()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeApp()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagSkipOpen, "skip-open", false, "Do not evaluate resets or advance the streak")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

func openApp(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	level := config.Load().LogLevel
	if flagVerbose {
		level = "debug"
	}
	logger = cli.SetupLogger(level, log.ComponentCLI, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, app = cli.InitBackend(ctx, logger, cfg)

	if flagSkipOpen {
		return nil
	}
	return onAppOpen(ctx, time.Now())
}

// onAppOpen runs what the app does whenever it comes to the foreground.
// Neither step blocks the command: failures are logged.
func onAppOpen(ctx context.Context, now time.Time) error {
	report, err := app.Resets.EvaluateAndResetAll(ctx, now)
	if err != nil {
		logger.ErrorContext(ctx, "Reset evaluation failed", log.FieldComponent, log.ComponentCLI, log.FieldError, err)
	} else {
		appOpenReport = &report
	}
	if _, err := app.Streak.UpdateOnAppOpen(ctx, now); err != nil {
		logger.ErrorContext(ctx, "Streak update failed", log.FieldComponent, log.ComponentCLI, log.FieldError, err)
	}
	return nil
}

func closeApp() error {
	if result == nil {
		return nil
	}
	err := result.Close()
	result, app, appOpenReport = nil, nil, nil
	if err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}
