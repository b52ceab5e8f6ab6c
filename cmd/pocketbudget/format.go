package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"pocketbudget/internal/core"
)

// formatMoney renders an amount with thousands separators and two decimals.
func formatMoney(d decimal.Decimal, currency string) string {
	f, _ := d.Round(2).Float64()
	s := humanize.FormatFloat("#,###.##", f)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func formatLastReset(b core.Budget, now time.Time) string {
	if b.LastReset == nil {
		return "-"
	}
	return humanize.RelTime(*b.LastReset, now, "ago", "from now")
}

func formatDuration(d core.Duration) string {
	if d == core.NoDuration {
		return "none"
	}
	return string(d)
}

// progressBar draws pct (0-100) as a bar of the given width.
func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD flag in local time; empty means unset.
func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(core.DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
