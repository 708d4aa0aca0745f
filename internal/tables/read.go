package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"subsim/internal/dataset"
)

// row gives named, typed access to one CSV record. The first conversion
// error sticks and is reported by err.
type row struct {
	cols   map[string]int
	record []string
	line   int
	err    error
}

func (r *row) str(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return r.record[idx]
}

func (r *row) num(name string) int {
	if r.err != nil {
		return 0
	}
	n, err := strconv.Atoi(r.str(name))
	if err != nil {
		r.err = fmt.Errorf("line %d: %s: %w", r.line, name, err)
	}
	return n
}

func (r *row) when(name string, layout string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	t, err := time.ParseInLocation(layout, r.str(name), time.UTC)
	if err != nil {
		r.err = fmt.Errorf("line %d: %s: %w", r.line, name, err)
	}
	return t
}

func (r *row) optionalDate(name string) *time.Time {
	if r.str(name) == "" {
		return nil
	}
	t := r.when(name, dataset.DateLayout)
	return &t
}

// scan opens path, checks the header against want and calls fn for each record.
func scan(path string, want []string, fn func(r *row)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%s: failed to read header: %w", filepath.Base(path), err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range want {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), name)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		r := &row{cols: cols, record: record, line: line}
		fn(r)
		if r.err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), r.err)
		}
	}
}

// ReadUsers loads users.csv from dir.
func ReadUsers(dir string) ([]dataset.User, error) {
	var users []dataset.User
	err := scan(filepath.Join(dir, UsersFile), usersHeader, func(r *row) {
		users = append(users, dataset.User{
			ID:         r.num("user_id"),
			Name:       r.str("name"),
			Email:      r.str("email"),
			SignupDate: r.when("signup_date", dataset.DateLayout),
			Country:    r.str("country"),
			AgeGroup:   r.str("age_group"),
			DeviceType: r.str("device_type"),
		})
	})
	return users, err
}

// ReadSubscriptions loads subscriptions.csv from dir.
func ReadSubscriptions(dir string) ([]dataset.Subscription, error) {
	var subs []dataset.Subscription
	err := scan(filepath.Join(dir, SubscriptionsFile), subscriptionsHeader, func(r *row) {
		subs = append(subs, dataset.Subscription{
			ID:         r.num("subscription_id"),
			UserID:     r.num("user_id"),
			Plan:       r.str("plan_type"),
			MonthlyFee: r.num("monthly_fee"),
			StartDate:  r.when("start_date", dataset.DateLayout),
			EndDate:    r.optionalDate("end_date"),
			Status:     dataset.Status(r.str("status")),
		})
	})
	return subs, err
}

// ReadWatchHistory loads watch_history.csv from dir. NominalMinutes is left
// zero since it is not part of the export.
func ReadWatchHistory(dir string) ([]dataset.WatchEvent, error) {
	var events []dataset.WatchEvent
	err := scan(filepath.Join(dir, WatchHistoryFile), watchHistoryHeader, func(r *row) {
		events = append(events, dataset.WatchEvent{
			ID:           r.num("history_id"),
			UserID:       r.num("user_id"),
			CatalogID:    r.num("movie_id"),
			WatchDate:    r.when("watch_date", dataset.DateLayout),
			WatchMinutes: r.num("watch_duration_mins"),
			DeviceType:   r.str("device_type"),
		})
	})
	return events, err
}

// ReadRevenue loads revenue_summary.csv from dir.
func ReadRevenue(dir string) ([]dataset.RevenueRow, error) {
	var rows []dataset.RevenueRow
	err := scan(filepath.Join(dir, RevenueFile), revenueHeader, func(r *row) {
		rows = append(rows, dataset.RevenueRow{
			Month:         r.when("month", dataset.MonthLayout),
			TotalUsers:    r.num("total_users"),
			NewSignups:    r.num("new_signups"),
			Cancellations: r.num("cancellations"),
			TotalRevenue:  r.num("total_revenue"),
		})
	})
	return rows, err
}

// ReadAll loads the four generated tables from dir. The catalog is not part
// of the output and must be supplied by the caller.
func ReadAll(dir string) (dataset.Dataset, error) {
	var (
		ds  dataset.Dataset
		err error
	)
	if ds.Users, err = ReadUsers(dir); err != nil {
		return ds, err
	}
	if ds.Subscriptions, err = ReadSubscriptions(dir); err != nil {
		return ds, err
	}
	if ds.WatchHistory, err = ReadWatchHistory(dir); err != nil {
		return ds, err
	}
	if ds.Revenue, err = ReadRevenue(dir); err != nil {
		return ds, err
	}
	return ds, nil
}
