package backend

import (
	"context"
	"fmt"

	"pocketbudget/internal/activity"
	"pocketbudget/internal/services"
	"pocketbudget/internal/streak"
)

// App wires the services of one process over a backend.
type App struct {
	Budgets      *services.BudgetService
	Transactions *services.TransactionService
	Profiles     *services.ProfileService
	Resets       *services.ResetEvaluator
	Spend        *services.SpendAggregator
	Activity     *activity.Recorder
	Streak       *streak.Counter
}

// NewApp builds the services over result. The activity log is loaded from the
// key-value store and capped at maxLogEntries (0 keeps every entry).
func NewApp(ctx context.Context, result *BackendResult, maxLogEntries int) (*App, error) {
	recorder, err := activity.NewRecorder(ctx, result.KV, maxLogEntries)
	if err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}

	return &App{
		Budgets:      services.NewBudgetService(result.Ledger, recorder, result.Publisher),
		Transactions: services.NewTransactionService(result.Ledger, recorder),
		Profiles:     services.NewProfileService(result.Ledger, recorder),
		Resets:       services.NewResetEvaluator(result.Ledger, recorder, result.Publisher),
		Spend:        services.NewSpendAggregator(result.Ledger),
		Activity:     recorder,
		Streak:       streak.NewCounter(result.KV, recorder),
	}, nil
}
