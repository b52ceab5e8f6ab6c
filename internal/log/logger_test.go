package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentReset, Output: &buf})

	logger.InfoContext(context.Background(), "Budget reset", FieldBudgetID, 7)
	logger.Debug("Streak updated", FieldStreak, 3)

	out := buf.String()
	if !strings.Contains(out, "component=reset") || !strings.Contains(out, "budget_id=7") {
		t.Errorf("missing reset fields in %q", out)
	}
	if strings.Count(out, "component=reset") != 2 || !strings.Contains(out, "streak=3") {
		t.Errorf("debug record lost its component in %q", out)
	}
}

func TestNewDefaultsToAppComponent(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf}).Info("started")
	if !strings.Contains(buf.String(), "component=app") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentReset).
		WithOperation(OpReset).
		WithBudget(3, "Food").
		WithError(errors.New("locked")).
		WithError(nil)

	if len(fields) != 5 {
		t.Fatalf("expected 5 fields, got %v", fields)
	}
	if fields[FieldError] != "locked" || fields[FieldBudgetID] != int64(3) {
		t.Errorf("unexpected fields %v", fields)
	}
	if got := len(fields.ToSlice()); got != 10 {
		t.Errorf("ToSlice length = %d, want 10", got)
	}
}
