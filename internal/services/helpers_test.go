package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger/memory"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []core.ActivityLogEntry
	err     error
}

func (f *fakeRecorder) Append(_ context.Context, typ core.ActivityType, message string) (core.ActivityLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return core.ActivityLogEntry{}, f.err
	}
	e := core.ActivityLogEntry{Type: typ, Message: message}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeRecorder) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Message
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

var errBoom = errors.New("boom")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func mustCreateBudget(t *testing.T, store *memory.Store, b core.Budget) int64 {
	t.Helper()
	id, err := store.CreateBudget(context.Background(), b)
	if err != nil {
		t.Fatalf("create budget %q: %v", b.Title, err)
	}
	return id
}

func mustCreateTx(t *testing.T, store *memory.Store, budgetID int64, typ core.TransactionType, amount string, at time.Time) {
	t.Helper()
	_, err := store.CreateTransaction(context.Background(), core.Transaction{
		BudgetID:  budgetID,
		Type:      typ,
		Amount:    dec(amount),
		Category:  "food",
		Date:      at,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
}

func periodBudget(title string, d core.Duration, amount, original string, lastReset time.Time) core.Budget {
	b := core.Budget{
		Title:     title,
		Amount:    dec(amount),
		Duration:  d,
		LastReset: timePtr(lastReset),
	}
	if original != "" {
		b.OriginalAmount = decimal.NewNullDecimal(dec(original))
	}
	return b
}
