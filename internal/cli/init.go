// Package cli holds the process bootstrap shared by cmd/pocketbudget and
// cmd/reset-worker.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pocketbudget/internal/backend"
	"pocketbudget/internal/config"
	"pocketbudget/internal/log"
)

// SetupLogger installs a text logger at the given level as the slog default.
// Records logged through the wrapper are tagged with component; records from
// the returned logger and slog.Default carry their own component field.
// An unknown level falls back to info and is reported.
func SetupLogger(level, component string, out io.Writer) *slog.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{Level: lvl, Component: component, Output: out})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", log.FieldError, err)
	}
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured backend and builds the services over it.
// Returns both or exits the process on failure. Close the result when done.
func InitBackend(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*backend.BackendResult, *backend.App) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	app, err := backend.NewApp(ctx, result, cfg.ActivityLogMaxEntries)
	if err != nil {
		_ = result.Close()
		logger.Error("Failed to initialize services", log.FieldError, err)
		os.Exit(1)
	}
	return result, app
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
