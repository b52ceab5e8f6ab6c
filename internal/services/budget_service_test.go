package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/ledger/memory"
)

func newTestBudgetService(store *memory.Store, rec *fakeRecorder, pub *fakePublisher, now time.Time) *BudgetService {
	s := NewBudgetService(store, rec, pub)
	s.now = func() time.Time { return now }
	return s
}

func TestBudgetService_CreateBudget(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		input         BudgetInput
		wantErr       error
		wantLastReset bool
	}{
		{
			name:          "weekly budget starts a period",
			input:         BudgetInput{Title: " Groceries ", Amount: "150,50", Duration: "Weekly"},
			wantLastReset: true,
		},
		{
			name:  "budget without duration",
			input: BudgetInput{Title: "Gifts", Amount: "40"},
		},
		{
			name:    "non-numeric amount",
			input:   BudgetInput{Title: "Food", Amount: "abc"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   BudgetInput{Title: "Food", Amount: "-5"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "blank title",
			input:   BudgetInput{Title: "   ", Amount: "5"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown duration",
			input:   BudgetInput{Title: "Food", Amount: "5", Duration: "yearly"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			rec := &fakeRecorder{}
			svc := newTestBudgetService(store, rec, nil, now)

			b, err := svc.CreateBudget(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if all, _ := store.ListBudgets(ctx); len(all) != 0 {
					t.Fatalf("invalid input must not write, found %d budgets", len(all))
				}
				if len(rec.entries) != 0 {
					t.Fatalf("invalid input must not log activity")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			stored, err := store.GetBudget(ctx, b.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !stored.OriginalAmount.Valid || !stored.OriginalAmount.Decimal.Equal(stored.Amount) {
				t.Errorf("original amount %+v should equal amount %s", stored.OriginalAmount, stored.Amount)
			}
			if got := stored.LastReset != nil; got != tt.wantLastReset {
				t.Errorf("lastReset set = %v, want %v", got, tt.wantLastReset)
			}
			if tt.wantLastReset && !stored.LastReset.Equal(now) {
				t.Errorf("lastReset = %v, want %v", stored.LastReset, now)
			}
			if len(rec.entries) != 1 || rec.entries[0].Type != core.ActivityBudget {
				t.Errorf("activity = %+v", rec.entries)
			}
		})
	}
}

func TestBudgetService_CreateBudgetNormalizesInput(t *testing.T) {
	svc := newTestBudgetService(memory.New(), &fakeRecorder{}, nil, time.Now())
	b, err := svc.CreateBudget(context.Background(), BudgetInput{Title: " Groceries ", Amount: "150,50", Duration: "Weekly"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Title != "Groceries" || b.Duration != core.Weekly || !b.Amount.Equal(dec("150.5")) {
		t.Fatalf("unexpected budget %+v", b)
	}
}

func TestBudgetService_EditBudget(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	edited := created.Add(3 * core.Day)
	store := memory.New()
	rec := &fakeRecorder{}
	svc := newTestBudgetService(store, rec, nil, created)

	b, err := svc.CreateBudget(ctx, BudgetInput{Title: "Food", Amount: "100", Duration: "weekly"})
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return edited }

	// Same duration keeps the running period.
	got, err := svc.EditBudget(ctx, b.ID, BudgetInput{Title: "Food & drinks", Amount: "120", Duration: "weekly", ThemeColor: "#fff"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.LastReset.Equal(created) || !got.OriginalAmount.Decimal.Equal(dec("120")) || got.ThemeColor != "#fff" {
		t.Fatalf("edit same duration = %+v", got)
	}

	// Switching duration starts a new period.
	got, err = svc.EditBudget(ctx, b.ID, BudgetInput{Title: "Food", Amount: "400", Duration: "monthly"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != core.Monthly || !got.LastReset.Equal(edited) {
		t.Fatalf("edit new duration = %+v", got)
	}

	// Clearing duration stops resets.
	got, err = svc.EditBudget(ctx, b.ID, BudgetInput{Title: "Food", Amount: "400"})
	if err != nil {
		t.Fatal(err)
	}
	if got.HasPeriod() {
		t.Fatalf("budget still has a period: %+v", got)
	}

	if _, err := svc.EditBudget(ctx, 999, BudgetInput{Title: "X", Amount: "1"}); !errors.Is(err, ledger.ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got %v", err)
	}
	if _, err := svc.EditBudget(ctx, b.ID, BudgetInput{Title: "X", Amount: "1.2.3"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(rec.entries) != 4 {
		t.Fatalf("expected 4 activity entries, got %d", len(rec.entries))
	}
}

func TestBudgetService_DeleteBudget(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store := memory.New()
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	svc := newTestBudgetService(store, rec, pub, now)

	b, err := svc.CreateBudget(ctx, BudgetInput{Title: "Trip", Amount: "900"})
	if err != nil {
		t.Fatal(err)
	}
	mustCreateTx(t, store, b.ID, core.Expense, "10", now)
	mustCreateTx(t, store, b.ID, core.Income, "10", now)

	if err := svc.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetBudget(ctx, b.ID); !errors.Is(err, ledger.ErrBudgetNotFound) {
		t.Fatalf("budget still present: %v", err)
	}
	if txs, _ := store.ListTransactions(ctx, b.ID, nil); len(txs) != 0 {
		t.Fatalf("transactions not cascaded: %+v", txs)
	}
	if len(pub.events) != 1 || pub.events[0].Type != amqp.EventBudgetDeleted || pub.events[0].Title != "Trip" {
		t.Fatalf("events = %+v", pub.events)
	}
	if msgs := rec.messages(); msgs[len(msgs)-1] != "Deleted budget Trip" {
		t.Fatalf("activity = %v", msgs)
	}

	if err := svc.DeleteBudget(ctx, b.ID); !errors.Is(err, ledger.ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got %v", err)
	}
}

func TestBudgetService_ActivityFailureDoesNotFailCreate(t *testing.T) {
	svc := newTestBudgetService(memory.New(), &fakeRecorder{err: errBoom}, nil, time.Now())
	if _, err := svc.CreateBudget(context.Background(), BudgetInput{Title: "Food", Amount: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
