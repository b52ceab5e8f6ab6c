package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/log"
)

// ResetStore is the slice of the Ledger Store the evaluator needs.
type ResetStore interface {
	ledger.BudgetReader
	ledger.BudgetResetter
}

// ResetReport summarizes one evaluation pass.
type ResetReport struct {
	Checked int // budgets with a duration and a last reset
	Reset   int
	Skipped int // budgets without a period, never auto-reset
	Failed  int
}

// ResetEvaluator restores budgets whose spending period has elapsed.
type ResetEvaluator struct {
	store     ResetStore
	recorder  ActivityRecorder
	publisher EventPublisher

	group singleflight.Group
	// passMu serializes passes so two evaluations never reset the same budget.
	passMu sync.Mutex
}

// NewResetEvaluator creates an evaluator. recorder and publisher are optional
// and may be nil.
func NewResetEvaluator(store ResetStore, recorder ActivityRecorder, publisher EventPublisher) *ResetEvaluator {
	return &ResetEvaluator{
		store:     store,
		recorder:  recorder,
		publisher: publisher,
	}
}

// EvaluateAndResetAll resets every budget whose period has elapsed at now:
// its amount returns to the original amount (zero when unset), its last reset
// moves to now and its Expense transactions are removed. Income is kept.
//
// A failure on one budget is logged and counted; the others are still
// evaluated. A call overlapping an in-flight evaluation for the same now
// shares its report; a call with a different now waits and runs its own pass.
func (e *ResetEvaluator) EvaluateAndResetAll(ctx context.Context, now time.Time) (ResetReport, error) {
	key := strconv.FormatInt(now.UnixNano(), 10)
	v, err, shared := e.group.Do(key, func() (interface{}, error) {
		e.passMu.Lock()
		defer e.passMu.Unlock()
		return e.evaluate(ctx, now)
	})
	if shared {
		slog.DebugContext(ctx, "Joined in-flight reset evaluation")
	}
	report, _ := v.(ResetReport)
	return report, err
}

func (e *ResetEvaluator) evaluate(ctx context.Context, now time.Time) (ResetReport, error) {
	var report ResetReport

	budgets, err := e.store.ListBudgets(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list budgets for reset", log.NewFields().
			WithComponent(log.ComponentReset).
			WithOperation(log.OpList).
			WithError(err).
			ToSlice()...)
		return report, fmt.Errorf("list budgets: %w", err)
	}

	for _, b := range budgets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !b.HasPeriod() {
			report.Skipped++
			continue
		}
		report.Checked++

		reset, err := e.evaluateBudget(ctx, b, now)
		if err != nil {
			report.Failed++
			fields := log.NewFields().
				WithComponent(log.ComponentReset).
				WithBudget(b.ID, b.Title).
				WithError(err)
			slog.ErrorContext(ctx, "Failed to evaluate budget reset",
				append(fields.ToSlice(), log.FieldPeriod, b.Duration)...)
			continue
		}
		if reset {
			report.Reset++
		}
	}

	slog.InfoContext(ctx, "Budget reset evaluation complete",
		log.FieldComponent, log.ComponentReset,
		"checked", report.Checked,
		"reset", report.Reset,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report, nil
}

func (e *ResetEvaluator) evaluateBudget(ctx context.Context, b core.Budget, now time.Time) (bool, error) {
	checker, err := GetDuenessChecker(b.Duration)
	if err != nil {
		return false, err
	}
	if !checker.IsDue(*b.LastReset, now) {
		return false, nil
	}

	amount := b.ResetAmount()
	if err := e.store.ResetBudget(ctx, b.ID, amount, now); err != nil {
		return false, fmt.Errorf("reset budget: %w", err)
	}

	fields := log.NewFields().
		WithComponent(log.ComponentReset).
		WithOperation(log.OpReset).
		WithBudget(b.ID, b.Title)
	slog.InfoContext(ctx, "Budget reset", append(fields.ToSlice(),
		log.FieldPeriod, b.Duration,
		log.FieldAmount, amount.String(),
		"days_elapsed", core.ElapsedDays(*b.LastReset, now))...)

	record(ctx, e.recorder, core.ActivityBudget,
		fmt.Sprintf("Reset %s budget %s to %s", b.Duration, b.Title, core.FormatAmount(amount)))
	publish(ctx, e.publisher, amqp.NewBudgetResetEvent(b.ID, b.Title, amount.String(), now))

	return true, nil
}
