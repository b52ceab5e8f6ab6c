package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
)

// SpendStore is the slice of the Ledger Store the aggregator reads.
type SpendStore interface {
	ledger.BudgetReader
	SumTransactions(ctx context.Context, budgetID int64, txType core.TransactionType) (decimal.Decimal, error)
}

// SpendAggregator derives how much of a budget has been consumed. Every call
// reads the store; nothing is cached.
type SpendAggregator struct {
	store SpendStore
}

func NewSpendAggregator(store SpendStore) *SpendAggregator {
	return &SpendAggregator{store: store}
}

// SpentForBudget sums the budget's Expense transactions. Income is ignored and
// a budget without expenses has spent zero.
func (a *SpendAggregator) SpentForBudget(ctx context.Context, budgetID int64) (decimal.Decimal, error) {
	spent, err := a.store.SumTransactions(ctx, budgetID, core.Expense)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses for budget %d: %w", budgetID, err)
	}
	return spent, nil
}

// Progress returns the budgeted, spent and remaining amounts of a budget with
// the clamped spent percentage.
func (a *SpendAggregator) Progress(ctx context.Context, budgetID int64) (core.BudgetProgress, error) {
	b, err := a.store.GetBudget(ctx, budgetID)
	if err != nil {
		return core.BudgetProgress{}, fmt.Errorf("get budget %d: %w", budgetID, err)
	}
	spent, err := a.SpentForBudget(ctx, budgetID)
	if err != nil {
		return core.BudgetProgress{}, err
	}
	return core.NewBudgetProgress(b.ID, b.Amount, spent), nil
}

// ProgressAll returns the progress of every budget, in store order.
func (a *SpendAggregator) ProgressAll(ctx context.Context) ([]core.BudgetProgress, error) {
	budgets, err := a.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent, err := a.SpentForBudget(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, core.NewBudgetProgress(b.ID, b.Amount, spent))
	}
	return out, nil
}
