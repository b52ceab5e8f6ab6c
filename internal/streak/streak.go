// Package streak counts consecutive calendar days on which the app was opened.
package streak

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/kvstore"
	"pocketbudget/internal/log"
)

// Key-value cache keys holding the streak state.
const (
	StreakKey         = "streak"
	LastActiveDateKey = "last_active_date"
)

// Milestones are the streak lengths that earn a badge.
var Milestones = []int{3, 7, 14, 30, 100}

// ActivityRecorder receives badge entries. *activity.Recorder satisfies it.
type ActivityRecorder interface {
	Append(ctx context.Context, typ core.ActivityType, message string) (core.ActivityLogEntry, error)
}

type Counter struct {
	store    kvstore.Store
	recorder ActivityRecorder
}

// NewCounter creates a Counter. recorder may be nil, in which case no badge
// entries are written.
func NewCounter(store kvstore.Store, recorder ActivityRecorder) *Counter {
	return &Counter{store: store, recorder: recorder}
}

// UpdateOnAppOpen advances the streak for an app open on today and returns the
// resulting streak. Days are compared in today's location. Repeated calls on the
// same day leave the streak unchanged. A today earlier than the last active
// date (clock moved back) is ignored.
func (c *Counter) UpdateOnAppOpen(ctx context.Context, today time.Time) (int, error) {
	todayDate := core.CalendarDate(today)

	last, ok, err := c.store.GetItem(ctx, LastActiveDateKey)
	if err != nil {
		return 0, fmt.Errorf("read last active date: %w", err)
	}

	if !ok || last == "" {
		if err := c.save(ctx, 1, todayDate); err != nil {
			return 0, err
		}
		slog.InfoContext(ctx, "Streak started", log.FieldComponent, log.ComponentStreak, "date", todayDate)
		return 1, nil
	}

	current, err := c.Current(ctx)
	if err != nil {
		return 0, err
	}
	if last == todayDate {
		return current, nil
	}

	diff, err := core.DaysBetweenDates(last, todayDate)
	if err != nil {
		slog.WarnContext(ctx, "Unreadable last active date, restarting streak",
			log.FieldComponent, log.ComponentStreak,
			"value", last,
			log.FieldError, err)
		diff = 2
	}

	var next int
	switch {
	case diff < 0:
		slog.WarnContext(ctx, "App opened before last active date",
			log.FieldComponent, log.ComponentStreak,
			"last_active_date", last,
			"today", todayDate)
		return current, nil
	case diff == 1:
		next = current + 1
	default:
		next = 1
	}

	if err := c.save(ctx, next, todayDate); err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Streak updated",
		log.FieldComponent, log.ComponentStreak,
		log.FieldStreak, next,
		"previous", current,
		"gap_days", diff)

	if next != current {
		c.awardBadge(ctx, next)
	}
	return next, nil
}

// Current returns the persisted streak, 0 when none has been recorded.
func (c *Counter) Current(ctx context.Context) (int, error) {
	raw, ok, err := c.store.GetItem(ctx, StreakKey)
	if err != nil {
		return 0, fmt.Errorf("read streak: %w", err)
	}
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		slog.WarnContext(ctx, "Unreadable streak value, treating as zero",
			log.FieldComponent, log.ComponentStreak,
			"value", raw)
		return 0, nil
	}
	return n, nil
}

// LastActiveDate returns the persisted YYYY-MM-DD date, ok=false before the
// first app open.
func (c *Counter) LastActiveDate(ctx context.Context) (string, bool, error) {
	return c.store.GetItem(ctx, LastActiveDateKey)
}

// IsMilestone reports whether n earns a badge.
func IsMilestone(n int) bool {
	for _, m := range Milestones {
		if m == n {
			return true
		}
	}
	return false
}

// Badges returns the milestones reached by a streak of n days.
func Badges(n int) []int {
	var out []int
	for _, m := range Milestones {
		if n >= m {
			out = append(out, m)
		}
	}
	return out
}

// save writes the date before the count: if the second write fails the day is
// already marked active and a retry cannot advance the streak twice.
func (c *Counter) save(ctx context.Context, streak int, date string) error {
	if err := c.store.SetItem(ctx, LastActiveDateKey, date); err != nil {
		return fmt.Errorf("save last active date: %w", err)
	}
	if err := c.store.SetItem(ctx, StreakKey, strconv.Itoa(streak)); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

func (c *Counter) awardBadge(ctx context.Context, n int) {
	if c.recorder == nil || !IsMilestone(n) {
		return
	}
	msg := fmt.Sprintf("Earned the %d-day streak badge", n)
	if _, err := c.recorder.Append(ctx, core.ActivityBadge, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to record badge",
			log.FieldComponent, log.ComponentStreak,
			log.FieldStreak, n,
			log.FieldError, err)
	}
}
