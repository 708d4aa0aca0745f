package dataset

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Day returns midnight UTC of the given civil date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return Day(year, month+1, 0).Day()
}

// AddMonths adds n calendar months keeping the day of month, clamped to the
// last day of the target month (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := Day(t.Year(), t.Month()+time.Month(n), 1)
	day := t.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return Day(first.Year(), first.Month(), day)
}

// DaysBetween counts whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), 1)
}

// MonthEnd returns the last day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return Day(t.Year(), t.Month()+1, 0)
}

// Months returns the first day of every calendar month touched by [start, end].
func Months(start, end time.Time) []time.Time {
	var months []time.Time
	for m := MonthStart(start); !m.After(end); m = AddMonths(m, 1) {
		months = append(months, m)
	}
	return months
}
