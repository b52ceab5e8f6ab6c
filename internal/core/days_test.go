package core

import (
	"testing"
	"time"
)

func TestElapsedDays(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"one second short of a day", base.Add(Day - time.Second), 0},
		{"exactly one day", base.Add(Day), 1},
		{"eight days", time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), 8},
		{"negative truncates toward zero", base.Add(-36 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedDays(base, tt.to); got != tt.want {
				t.Errorf("ElapsedDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetweenDates(t *testing.T) {
	got, err := DaysBetweenDates("2025-02-27", "2025-03-01")
	if err != nil || got != 2 {
		t.Fatalf("DaysBetweenDates = %d, %v; want 2", got, err)
	}
	if _, err := DaysBetweenDates("not-a-date", "2025-03-01"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCalendarDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := CalendarDate(ts.In(loc)); got != "2025-01-02" {
		t.Fatalf("CalendarDate = %s, want 2025-01-02", got)
	}
}
