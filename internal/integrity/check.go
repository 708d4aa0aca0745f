package integrity

import (
	"fmt"
	"strings"
	"time"

	"subsim/internal/dataset"
	"subsim/internal/revenue"
)

// Violation is a single broken invariant.
type Violation struct {
	Table  string
	Row    int
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s row %d: %s", v.Table, v.Row, v.Reason)
}

// Error wraps the violations of a failed check.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, v := range e.Violations {
		if i == shown {
			break
		}
		parts = append(parts, v.String())
	}
	msg := fmt.Sprintf("dataset integrity violated (%d problems): %s", len(e.Violations), strings.Join(parts, "; "))
	if len(e.Violations) > shown {
		msg += "; ..."
	}
	return msg
}

// Options tune checks that depend on how the dataset was produced.
type Options struct {
	// FallbackMaxMinutes bounds watch durations of items with an unknown
	// runtime when the sampled nominal value is not known (events read from disk).
	FallbackMaxMinutes int

	// Start and End are the inclusive global date range. When both are set,
	// signup and watch dates are bounded by them and the revenue table, if
	// present, is recomputed and compared row by row.
	Start, End time.Time

	// PlanFee resolves the monthly fee of a plan. Fees are not checked when nil.
	PlanFee func(name string) (int, bool)
}

func (o Options) hasRange() bool {
	return !o.Start.IsZero() && !o.End.IsZero()
}

func (o Options) inRange(t time.Time) bool {
	return !t.Before(o.Start) && !t.After(o.End)
}

// Report collects every violation found.
type Report struct {
	Violations []Violation
}

// Err returns nil for a clean report.
func (r Report) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	return &Error{Violations: r.Violations}
}

// Count returns the number of violations for a table.
func (r Report) Count(table string) int {
	n := 0
	for _, v := range r.Violations {
		if v.Table == table {
			n++
		}
	}
	return n
}

func (r *Report) add(table string, row int, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Table: table, Row: row, Reason: fmt.Sprintf(format, args...)})
}

// Check verifies identifier density, referential integrity, plan fees, dates,
// subscription windows, watch-duration bounds and, when present, the revenue
// table.
func Check(ds dataset.Dataset, opts Options) Report {
	var r Report

	items := make(map[int]dataset.CatalogItem, len(ds.Catalog))
	for i, item := range ds.Catalog {
		if item.ID != i+1 {
			r.add("catalog", i+1, "id %d breaks the dense sequence", item.ID)
		}
		items[item.ID] = item
	}

	users := make(map[int]dataset.User, len(ds.Users))
	for i, u := range ds.Users {
		if u.ID != i+1 {
			r.add("users", i+1, "id %d breaks the dense sequence", u.ID)
		}
		if opts.hasRange() && !opts.inRange(u.SignupDate) {
			r.add("users", i+1, "signup date %s outside the date range", u.SignupDate.Format(dataset.DateLayout))
		}
		users[u.ID] = u
	}

	for i, s := range ds.Subscriptions {
		row := i + 1
		if s.ID != row {
			r.add("subscriptions", row, "id %d breaks the dense sequence", s.ID)
		}
		if u, ok := users[s.UserID]; !ok {
			r.add("subscriptions", row, "user_id %d does not exist", s.UserID)
		} else if !s.StartDate.Equal(u.SignupDate) {
			r.add("subscriptions", row, "start date %s differs from signup date %s", s.StartDate.Format(dataset.DateLayout), u.SignupDate.Format(dataset.DateLayout))
		}
		if opts.PlanFee != nil {
			if fee, ok := opts.PlanFee(s.Plan); !ok {
				r.add("subscriptions", row, "unknown plan %q", s.Plan)
			} else if fee != s.MonthlyFee {
				r.add("subscriptions", row, "monthly fee %d does not match plan %s (%d)", s.MonthlyFee, s.Plan, fee)
			}
		}
		switch s.Status {
		case dataset.Cancelled:
			if s.EndDate == nil {
				r.add("subscriptions", row, "cancelled subscription has no end date")
			} else if s.EndDate.Before(s.StartDate) {
				r.add("subscriptions", row, "end date %s before start date %s", s.EndDate.Format(dataset.DateLayout), s.StartDate.Format(dataset.DateLayout))
			}
		case dataset.Active:
			if s.EndDate != nil {
				r.add("subscriptions", row, "active subscription has an end date")
			}
		default:
			r.add("subscriptions", row, "unknown status %q", s.Status)
		}
	}

	for i, e := range ds.WatchHistory {
		row := i + 1
		if e.ID != row {
			r.add("watch_history", row, "id %d breaks the dense sequence", e.ID)
		}
		if u, ok := users[e.UserID]; !ok {
			r.add("watch_history", row, "user_id %d does not exist", e.UserID)
		} else if e.DeviceType != u.DeviceType {
			r.add("watch_history", row, "device %q differs from user device %q", e.DeviceType, u.DeviceType)
		}
		if opts.hasRange() && !opts.inRange(e.WatchDate) {
			r.add("watch_history", row, "watch date %s outside the date range", e.WatchDate.Format(dataset.DateLayout))
		}
		if e.WatchMinutes < 1 {
			r.add("watch_history", row, "non-positive watch duration %d", e.WatchMinutes)
		}
		item, ok := items[e.CatalogID]
		if !ok {
			r.add("watch_history", row, "movie_id %d does not exist", e.CatalogID)
			continue
		}
		if limit := watchLimit(e, item, opts); limit > 0 && e.WatchMinutes > limit {
			r.add("watch_history", row, "watch duration %d exceeds nominal %d", e.WatchMinutes, limit)
		}
	}

	if len(ds.Revenue) > 0 && opts.hasRange() {
		checkRevenue(&r, ds, opts)
	} else {
		for i := 1; i < len(ds.Revenue); i++ {
			if !ds.Revenue[i].Month.After(ds.Revenue[i-1].Month) {
				r.add("revenue_summary", i+1, "months out of order")
			}
		}
	}

	return r
}

// checkRevenue recomputes the monthly aggregates from users and subscriptions
// and reports every row that differs.
func checkRevenue(r *Report, ds dataset.Dataset, opts Options) {
	want := revenue.Summarize(ds.Users, ds.Subscriptions, opts.Start, opts.End)
	if len(want) != len(ds.Revenue) {
		r.add("revenue_summary", 0, "%d months, expected %d", len(ds.Revenue), len(want))
	}
	for i := range min(len(want), len(ds.Revenue)) {
		got, exp := ds.Revenue[i], want[i]
		if !got.Month.Equal(exp.Month) {
			r.add("revenue_summary", i+1, "month %s, expected %s", got.Month.Format(dataset.MonthLayout), exp.Month.Format(dataset.MonthLayout))
			continue
		}
		got.Month = exp.Month
		if got != exp {
			r.add("revenue_summary", i+1, "%s aggregates %d/%d/%d/%d do not match source rows %d/%d/%d/%d",
				got.Month.Format(dataset.MonthLayout),
				got.TotalUsers, got.NewSignups, got.Cancellations, got.TotalRevenue,
				exp.TotalUsers, exp.NewSignups, exp.Cancellations, exp.TotalRevenue)
		}
	}
}

func watchLimit(e dataset.WatchEvent, item dataset.CatalogItem, opts Options) int {
	switch {
	case e.NominalMinutes > 0:
		return e.NominalMinutes
	case item.Runtime.Parsed:
		return item.Runtime.Minutes
	default:
		return opts.FallbackMaxMinutes
	}
}
