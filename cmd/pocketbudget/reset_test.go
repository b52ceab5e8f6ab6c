package main

import (
	"context"
	"testing"
	"time"

	"pocketbudget/internal/services"
)

type countingEvaluator struct {
	calls  int
	report services.ResetReport
}

func (e *countingEvaluator) EvaluateAndResetAll(_ context.Context, _ time.Time) (services.ResetReport, error) {
	e.calls++
	return e.report, nil
}

func TestResetReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("reports the app open pass", func(t *testing.T) {
		eval := &countingEvaluator{}
		opened := &services.ResetReport{Checked: 2, Reset: 1}
		got, err := resetReport(context.Background(), eval, opened, now)
		if err != nil {
			t.Fatal(err)
		}
		if got != *opened {
			t.Errorf("report = %+v, want %+v", got, *opened)
		}
		if eval.calls != 0 {
			t.Errorf("evaluated %d more times, want 0", eval.calls)
		}
	})

	t.Run("evaluates when app open was skipped", func(t *testing.T) {
		eval := &countingEvaluator{report: services.ResetReport{Checked: 1, Reset: 1}}
		got, err := resetReport(context.Background(), eval, nil, now)
		if err != nil {
			t.Fatal(err)
		}
		if eval.calls != 1 || got.Reset != 1 {
			t.Errorf("calls = %d, report = %+v", eval.calls, got)
		}
	})
}
