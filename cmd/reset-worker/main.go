package main

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"pocketbudget/internal/cli"
	"pocketbudget/internal/config"
	"pocketbudget/internal/log"
	"pocketbudget/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load().LogLevel, log.ComponentWorker, os.Stdout)
	logger.Info("Starting reset-worker", log.FieldComponent, log.ComponentWorker, log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(context.Background())
	defer stop()

	result, app := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldComponent, log.ComponentWorker, log.FieldError, err)
		}
	}()

	logger.Info("Budget reset evaluator configured",
		"interval", cfg.ResetInterval,
		log.FieldComponent, log.ComponentWorker,
		log.FieldBackend, cfg.DataBackend,
		"amqp_enabled", result.Publisher != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.NewResetWorker(app.Resets, cfg.ResetInterval).Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Reset worker failed", log.FieldComponent, log.ComponentWorker, log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Reset-worker shutdown complete", log.FieldComponent, log.ComponentWorker, log.FieldOperation, log.OpShutdown)
}
