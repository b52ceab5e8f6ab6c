// Package worker runs the reset evaluator on a fixed interval.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pocketbudget/internal/log"
	"pocketbudget/internal/services"
)

// Evaluator runs one reset pass. *services.ResetEvaluator satisfies it.
type Evaluator interface {
	EvaluateAndResetAll(ctx context.Context, now time.Time) (services.ResetReport, error)
}

type ResetWorker struct {
	evaluator Evaluator
	interval  time.Duration
	now       func() time.Time
}

func NewResetWorker(evaluator Evaluator, interval time.Duration) *ResetWorker {
	return &ResetWorker{
		evaluator: evaluator,
		interval:  interval,
		now:       time.Now,
	}
}

// Run evaluates once immediately and then on every tick until ctx is done.
// A failed pass is logged and retried on the next tick; Run itself only
// returns when ctx is cancelled.
func (w *ResetWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Reset worker started",
		log.FieldComponent, log.ComponentWorker,
		"interval", w.interval)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Reset worker stopped")
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ResetWorker) runOnce(ctx context.Context) {
	start := w.now()
	report, err := w.evaluator.EvaluateAndResetAll(ctx, start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fields := log.NewFields().
			WithComponent(log.ComponentWorker).
			WithOperation(log.OpReset).
			WithError(err)
		slog.ErrorContext(ctx, "Reset pass failed", fields.ToSlice()...)
		return
	}
	fields := log.NewFields().
		WithComponent(log.ComponentWorker).
		WithOperation(log.OpReset).
		WithDurationMs(time.Since(start).Milliseconds())
	slog.InfoContext(ctx, "Reset pass complete", append(fields.ToSlice(),
		"reset", report.Reset,
		"failed", report.Failed,
		"next_check", start.Add(w.interval).Format("15:04:05"))...)
}
