package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger/memory"
)

func TestResetEvaluator_EvaluateAndResetAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()

	groceries := mustCreateBudget(t, store, periodBudget("Groceries", core.Weekly, "40", "100", now.Add(-8*core.Day)))
	rent := mustCreateBudget(t, store, periodBudget("Rent", core.Monthly, "500", "900", now.Add(-29*core.Day)))
	gifts := mustCreateBudget(t, store, core.Budget{Title: "Gifts", Amount: dec("50")})

	mustCreateTx(t, store, groceries, core.Expense, "60", now.Add(-2*core.Day))
	mustCreateTx(t, store, groceries, core.Income, "20", now.Add(-time.Hour))
	mustCreateTx(t, store, rent, core.Expense, "400", now.Add(-time.Hour))
	mustCreateTx(t, store, gifts, core.Expense, "10", now.Add(-40*core.Day))

	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	eval := NewResetEvaluator(store, rec, pub)

	report, err := eval.EvaluateAndResetAll(ctx, now)
	if err != nil {
		t.Fatalf("EvaluateAndResetAll: %v", err)
	}
	want := ResetReport{Checked: 2, Reset: 1, Skipped: 1}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}

	b, _ := store.GetBudget(ctx, groceries)
	if !b.Amount.Equal(dec("100")) {
		t.Errorf("groceries amount = %s, want 100", b.Amount)
	}
	if b.LastReset == nil || !b.LastReset.Equal(now) {
		t.Errorf("groceries lastReset = %v, want %v", b.LastReset, now)
	}
	txs, _ := store.ListTransactions(ctx, groceries, nil)
	if len(txs) != 1 || txs[0].Type != core.Income {
		t.Errorf("expected only the income to survive, got %+v", txs)
	}

	r, _ := store.GetBudget(ctx, rent)
	if !r.Amount.Equal(dec("500")) {
		t.Errorf("rent should not reset after 29 days, amount = %s", r.Amount)
	}
	if spent, _ := store.SumTransactions(ctx, rent, core.Expense); !spent.Equal(dec("400")) {
		t.Errorf("rent expenses touched: %s", spent)
	}
	if spent, _ := store.SumTransactions(ctx, gifts, core.Expense); !spent.Equal(dec("10")) {
		t.Errorf("budget without duration touched: %s", spent)
	}

	if msgs := rec.messages(); len(msgs) != 1 || msgs[0] != "Reset weekly budget Groceries to 100.00" {
		t.Errorf("activity = %v", msgs)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != amqp.EventBudgetReset || ev.BudgetID != groceries || ev.Amount != "100" || !ev.Timestamp.Equal(now) {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestResetEvaluator_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	id := mustCreateBudget(t, store, periodBudget("Fun", core.Monthly, "3", "80", now.Add(-30*core.Day)))
	mustCreateTx(t, store, id, core.Expense, "77", now.Add(-core.Day))

	eval := NewResetEvaluator(store, nil, nil)
	first, err := eval.EvaluateAndResetAll(ctx, now)
	if err != nil || first.Reset != 1 {
		t.Fatalf("first pass = %+v, %v", first, err)
	}

	// An expense logged between the passes must survive the second one.
	mustCreateTx(t, store, id, core.Expense, "5", now)

	second, err := eval.EvaluateAndResetAll(ctx, now)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Reset != 0 || second.Checked != 1 {
		t.Fatalf("second pass = %+v, want no reset", second)
	}
	if spent, _ := store.SumTransactions(ctx, id, core.Expense); !spent.Equal(dec("5")) {
		t.Fatalf("spent = %s, want 5", spent)
	}
}

func TestResetEvaluator_Thresholds(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		duration  core.Duration
		lastReset time.Time
		wantReset bool
	}{
		{"weekly reset this instant", core.Weekly, now, false},
		{"weekly 6 days 23 hours", core.Weekly, now.Add(-7*core.Day + time.Hour), false},
		{"weekly exactly 7 days", core.Weekly, now.Add(-7 * core.Day), true},
		{"monthly 29 days", core.Monthly, now.Add(-29 * core.Day), false},
		{"monthly exactly 30 days", core.Monthly, now.Add(-30 * core.Day), true},
		{"monthly 90 days", core.Monthly, now.Add(-90 * core.Day), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			mustCreateBudget(t, store, periodBudget("B", tt.duration, "1", "10", tt.lastReset))
			report, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(context.Background(), now)
			if err != nil {
				t.Fatal(err)
			}
			if got := report.Reset == 1; got != tt.wantReset {
				t.Errorf("reset = %v, want %v", got, tt.wantReset)
			}
		})
	}
}

func TestResetEvaluator_MissingOriginalAmountResetsToZero(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	id := mustCreateBudget(t, store, periodBudget("Legacy", core.Weekly, "12.5", "", now.Add(-10*core.Day)))

	if _, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(ctx, now); err != nil {
		t.Fatal(err)
	}
	b, _ := store.GetBudget(ctx, id)
	if !b.Amount.IsZero() {
		t.Fatalf("amount = %s, want 0", b.Amount)
	}
}

func TestResetEvaluator_ContinuesAfterBudgetFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	broken := mustCreateBudget(t, store, periodBudget("Broken", core.Weekly, "1", "10", now.Add(-8*core.Day)))
	healthy := mustCreateBudget(t, store, periodBudget("Healthy", core.Weekly, "1", "10", now.Add(-8*core.Day)))

	store.Fail = func(op string, id int64) error {
		if op == "ResetBudget" && id == broken {
			return errBoom
		}
		return nil
	}

	report, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(ctx, now)
	if err != nil {
		t.Fatalf("a single budget failure must not fail the pass: %v", err)
	}
	if report.Failed != 1 || report.Reset != 1 {
		t.Fatalf("report = %+v", report)
	}
	store.Fail = nil
	if b, _ := store.GetBudget(ctx, healthy); !b.Amount.Equal(dec("10")) {
		t.Fatalf("healthy budget not reset: %s", b.Amount)
	}
	if b, _ := store.GetBudget(ctx, broken); !b.Amount.Equal(dec("1")) {
		t.Fatalf("broken budget changed: %s", b.Amount)
	}
}

func TestResetEvaluator_SideEffectFailuresDoNotFailReset(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	mustCreateBudget(t, store, periodBudget("B", core.Weekly, "1", "10", now.Add(-8*core.Day)))

	eval := NewResetEvaluator(store, &fakeRecorder{err: errBoom}, &fakePublisher{err: errBoom})
	report, err := eval.EvaluateAndResetAll(ctx, now)
	if err != nil || report.Reset != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v, err = %v", report, err)
	}
}

func TestResetEvaluator_ListFailure(t *testing.T) {
	store := memory.New()
	store.Fail = func(op string, _ int64) error {
		if op == "ListBudgets" {
			return errBoom
		}
		return nil
	}
	_, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(context.Background(), time.Now())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestResetEvaluator_CanceledContext(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	id := mustCreateBudget(t, store, periodBudget("B", core.Weekly, "1", "10", now.Add(-8*core.Day)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(ctx, now)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b, _ := store.GetBudget(context.Background(), id); !b.Amount.Equal(dec("1")) {
		t.Fatalf("budget reset despite cancellation")
	}
}

// gatedStore holds ListBudgets until release is closed so passes can overlap.
type gatedStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Store:   memory.New(),
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Store.ListBudgets(ctx)
}

func TestResetEvaluator_OverlappingCallsUseTheirOwnNow(t *testing.T) {
	ctx := context.Background()
	lastReset := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := newGatedStore()
	id := mustCreateBudget(t, store.Store, periodBudget("Food", core.Weekly, "10", "100", lastReset))
	eval := NewResetEvaluator(store, nil, nil)

	type result struct {
		report ResetReport
		err    error
	}
	early := make(chan result, 1)
	late := make(chan result, 1)

	go func() {
		r, err := eval.EvaluateAndResetAll(ctx, lastReset.Add(core.Day))
		early <- result{r, err}
	}()
	<-store.entered

	go func() {
		r, err := eval.EvaluateAndResetAll(ctx, lastReset.Add(8*core.Day))
		late <- result{r, err}
	}()
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	first, second := <-early, <-late
	if first.err != nil || second.err != nil {
		t.Fatalf("errors: %v, %v", first.err, second.err)
	}
	if first.report.Reset != 0 {
		t.Errorf("one day in: report = %+v, want no reset", first.report)
	}
	if second.report.Reset != 1 {
		t.Errorf("eight days in: report = %+v, want one reset", second.report)
	}
	b, _ := store.GetBudget(ctx, id)
	if !b.Amount.Equal(dec("100")) {
		t.Errorf("amount = %s, want 100", b.Amount)
	}
}

func TestResetEvaluator_OverlappingCallsWithSameNowResetOnce(t *testing.T) {
	ctx := context.Background()
	lastReset := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := lastReset.Add(8 * core.Day)
	store := newGatedStore()
	mustCreateBudget(t, store.Store, periodBudget("Food", core.Weekly, "10", "100", lastReset))
	pub := &fakePublisher{}
	eval := NewResetEvaluator(store, nil, pub)

	var wg sync.WaitGroup
	reports := make([]ResetReport, 2)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = eval.EvaluateAndResetAll(ctx, now)
		}(i)
		if i == 0 {
			<-store.entered
		}
	}
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	for i, r := range reports {
		if r.Reset != 1 {
			t.Errorf("caller %d report = %+v, want the shared reset", i, r)
		}
	}
	if len(pub.events) != 1 {
		t.Errorf("expected a single reset event, got %d", len(pub.events))
	}
}

func TestResetEvaluator_LogsWithSharedFields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	mustCreateBudget(t, store, periodBudget("Food", core.Weekly, "10", "100", now.Add(-7*core.Day)))

	if _, err := NewResetEvaluator(store, nil, nil).EvaluateAndResetAll(context.Background(), now); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"component=reset", "operation=reset", "budget_id=1", "title=Food", "amount=100"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
