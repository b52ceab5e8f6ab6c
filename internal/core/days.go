package core

import "time"

// Day is the fixed length used for every elapsed-day computation. Elapsed
// time is measured in exact 24-hour multiples, not calendar boundaries, so DST
// shifts and month lengths are ignored on purpose.
const Day = 24 * time.Hour

// DateLayout is the persisted form of a calendar day.
const DateLayout = "2006-01-02"

// ElapsedDays returns the whole days between from and to, truncated toward zero.
func ElapsedDays(from, to time.Time) int {
	return int(to.Sub(from) / Day)
}

// CalendarDate formats t as YYYY-MM-DD in t's own location.
func CalendarDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetweenDates returns the whole days from one YYYY-MM-DD date to another.
func DaysBetweenDates(from, to string) (int, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, err
	}
	return ElapsedDays(f, t), nil
}
