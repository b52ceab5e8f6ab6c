package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/log"
)

// BudgetStore is the slice of the Ledger Store the budget flows use.
type BudgetStore interface {
	ledger.BudgetReader
	ledger.BudgetWriter
}

// BudgetInput is the raw user input of the create and edit flows.
type BudgetInput struct {
	Title        string `validate:"required,max=80"`
	Amount       string `validate:"required"`
	ThemeColor   string `validate:"omitempty,max=32"`
	ContentColor string `validate:"omitempty,max=32"`
	Duration     string `validate:"budget_duration"`
}

func (in BudgetInput) normalized() BudgetInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Amount = strings.TrimSpace(in.Amount)
	in.Duration = strings.ToLower(strings.TrimSpace(in.Duration))
	return in
}

// BudgetService runs the budget creation, edit and deletion flows.
type BudgetService struct {
	store     BudgetStore
	recorder  ActivityRecorder
	publisher EventPublisher
	now       func() time.Time
}

// NewBudgetService creates the service. recorder and publisher may be nil.
func NewBudgetService(store BudgetStore, recorder ActivityRecorder, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		store:     store,
		recorder:  recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateBudget validates the input and stores a new budget. The amount becomes
// the original amount restored on every reset, and a budget with a duration
// starts its first period now. Invalid input is rejected before any write.
func (s *BudgetService) CreateBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return core.Budget{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: amount %q", err, in.Amount)
	}

	b := core.Budget{
		Title:        in.Title,
		Amount:       amount,
		ThemeColor:   in.ThemeColor,
		ContentColor: in.ContentColor,
		Duration:     core.Duration(in.Duration),
	}
	b.OriginalAmount.Decimal, b.OriginalAmount.Valid = amount, true
	if b.Duration != core.NoDuration {
		now := s.now()
		b.LastReset = &now
	}

	id, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID = id

	slog.InfoContext(ctx, "Budget created",
		log.FieldOperation, log.OpCreate,
		log.FieldBudgetID, id,
		log.FieldPeriod, b.Duration)
	record(ctx, s.recorder, core.ActivityBudget, fmt.Sprintf("Created budget %s", b.Title))
	return b, nil
}

// EditBudget replaces the title, colours, amount and duration of a budget.
// A new amount also becomes the original amount. Switching to a duration
// starts a fresh period; clearing it stops automatic resets.
func (s *BudgetService) EditBudget(ctx context.Context, id int64, in BudgetInput) (core.Budget, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return core.Budget{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: amount %q", err, in.Amount)
	}

	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}

	duration := core.Duration(in.Duration)
	switch {
	case duration == core.NoDuration:
		b.LastReset = nil
	case duration != b.Duration || b.LastReset == nil:
		now := s.now()
		b.LastReset = &now
	}

	b.Title = in.Title
	b.ThemeColor = in.ThemeColor
	b.ContentColor = in.ContentColor
	b.Duration = duration
	b.Amount = amount
	b.OriginalAmount.Decimal, b.OriginalAmount.Valid = amount, true

	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldBudgetID, id,
		log.FieldPeriod, b.Duration)
	record(ctx, s.recorder, core.ActivityBudget, fmt.Sprintf("Edited budget %s", b.Title))
	return b, nil
}

// DeleteBudget removes a budget and all of its transactions.
func (s *BudgetService) DeleteBudget(ctx context.Context, id int64) error {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("get budget %d: %w", id, err)
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget deleted", log.FieldOperation, log.OpDelete, log.FieldBudgetID, id)
	record(ctx, s.recorder, core.ActivityBudget, fmt.Sprintf("Deleted budget %s", b.Title))
	publish(ctx, s.publisher, amqp.NewBudgetDeletedEvent(id, b.Title))
	return nil
}

func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}
