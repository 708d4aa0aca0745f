// Package revenue derives the monthly revenue table from users and
// subscriptions. Inputs are never modified, so Summarize can run at any
// point after subscriptions exist.
package revenue

import (
	"time"

	"subsim/internal/dataset"
)

// Summarize returns one row per calendar month touched by [start, end], in
// chronological order.
func Summarize(users []dataset.User, subs []dataset.Subscription, start, end time.Time) []dataset.RevenueRow {
	months := dataset.Months(start, end)
	rows := make([]dataset.RevenueRow, len(months))

	for i, ms := range months {
		me := dataset.MonthEnd(ms)
		row := dataset.RevenueRow{Month: ms}

		for _, s := range subs {
			if s.ActiveIn(ms, me) {
				row.TotalUsers++
				row.TotalRevenue += s.MonthlyFee
			}
			if s.Status == dataset.Cancelled && s.EndDate != nil && within(*s.EndDate, ms, me) {
				row.Cancellations++
			}
		}
		for _, u := range users {
			if within(u.SignupDate, ms, me) {
				row.NewSignups++
			}
		}
		rows[i] = row
	}
	return rows
}

func within(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}
