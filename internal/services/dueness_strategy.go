// Package services provides the budget logic the CLI and the reset worker
// drive: periodic resets, spend aggregation, budget/transaction/profile flows.
//
// This file holds the per-duration dueness strategies used by the reset
// evaluator. Each duration owns a checker that decides whether a budget's
// period has elapsed.
package services

import (
	"fmt"
	"time"

	"pocketbudget/internal/core"
)

// DuenessChecker decides whether a budget last reset at lastReset is due at now.
type DuenessChecker interface {
	IsDue(lastReset, now time.Time) bool
}

// PeriodChecker is due once at least Days whole days have elapsed. Elapsed days
// are exact 24-hour multiples truncated toward zero.
type PeriodChecker struct {
	Days int
}

func (c PeriodChecker) IsDue(lastReset, now time.Time) bool {
	return core.ElapsedDays(lastReset, now) >= c.Days
}

var (
	// WeeklyChecker is due after 7 elapsed days.
	WeeklyChecker = PeriodChecker{Days: 7}
	// MonthlyChecker is due after 30 elapsed days, regardless of month length.
	MonthlyChecker = PeriodChecker{Days: 30}
)

var duenessStrategies = map[core.Duration]DuenessChecker{
	core.Weekly:  WeeklyChecker,
	core.Monthly: MonthlyChecker,
}

// GetDuenessChecker returns the checker registered for a duration.
func GetDuenessChecker(d core.Duration) (DuenessChecker, error) {
	checker, ok := duenessStrategies[d]
	if !ok {
		return nil, fmt.Errorf("%w: no dueness checker for %q", core.ErrInvalidDuration, d)
	}
	return checker, nil
}
