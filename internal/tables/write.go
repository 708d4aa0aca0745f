package tables

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"subsim/internal/dataset"

	"github.com/rs/zerolog/log"
)

const (
	UsersFile         = "users.csv"
	SubscriptionsFile = "subscriptions.csv"
	WatchHistoryFile  = "watch_history.csv"
	RevenueFile       = "revenue_summary.csv"
)

var (
	usersHeader         = []string{"user_id", "name", "email", "signup_date", "country", "age_group", "device_type"}
	subscriptionsHeader = []string{"subscription_id", "user_id", "plan_type", "monthly_fee", "start_date", "end_date", "status"}
	watchHistoryHeader  = []string{"history_id", "user_id", "movie_id", "watch_date", "watch_duration_mins", "device_type"}
	revenueHeader       = []string{"month", "total_users", "new_signups", "cancellations", "total_revenue"}
)

type encoder func(w *csv.Writer) error

// WriteAll encodes the four generated tables into dir. Files are first
// written to a staging directory and only moved into place once every table
// encoded successfully.
func WriteAll(dir string, ds dataset.Dataset) error {
	return publish(dir, map[string]encoder{
		UsersFile:         func(w *csv.Writer) error { return encodeUsers(w, ds.Users) },
		SubscriptionsFile: func(w *csv.Writer) error { return encodeSubscriptions(w, ds.Subscriptions) },
		WatchHistoryFile:  func(w *csv.Writer) error { return encodeWatchHistory(w, ds.WatchHistory) },
		RevenueFile:       func(w *csv.Writer) error { return encodeRevenue(w, ds.Revenue) },
	})
}

// WriteRevenue replaces only the revenue summary in dir.
func WriteRevenue(dir string, rows []dataset.RevenueRow) error {
	return publish(dir, map[string]encoder{
		RevenueFile: func(w *csv.Writer) error { return encodeRevenue(w, rows) },
	})
}

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

// publish encodes files into a staging directory inside dir and then swaps
// them in. The previous versions are kept in the staging directory until
// every table is in place, and are moved back if any swap fails, so dir never
// holds a mix of old and new tables after an error.
func publish(dir string, files map[string]encoder) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	staging, err := os.MkdirTemp(dir, ".staging-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	names := slices.Sorted(maps.Keys(files))
	for _, name := range names {
		if err := writeFile(filepath.Join(staging, name), files[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	previous := filepath.Join(staging, "previous")
	if err := os.Mkdir(previous, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	var swapped []string
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := rename(target, filepath.Join(previous, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			restore(dir, previous, swapped)
			return fmt.Errorf("failed to publish %s: %w", name, err)
		}
		swapped = append(swapped, name)
		if err := rename(filepath.Join(staging, name), target); err != nil {
			restore(dir, previous, swapped)
			return fmt.Errorf("failed to publish %s: %w", name, err)
		}
	}
	for _, name := range names {
		log.Debug().Str("file", filepath.Join(dir, name)).Msg("Table written")
	}
	return nil
}

// restore undoes a partial publish: new tables are removed and the previous
// versions, where there were any, are moved back.
func restore(dir, previous string, names []string) {
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("file", target).Msg("Failed to remove partially published table")
			continue
		}
		if err := os.Rename(filepath.Join(previous, name), target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("file", target).Msg("Failed to restore previous table")
		}
	}
}

func writeFile(path string, enc encoder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	if err := enc(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func itoa(n int) string { return strconv.Itoa(n) }

func date(t time.Time) string { return t.Format(dataset.DateLayout) }

func encodeUsers(w *csv.Writer, users []dataset.User) error {
	if err := w.Write(usersHeader); err != nil {
		return err
	}
	for _, u := range users {
		if err := w.Write([]string{itoa(u.ID), u.Name, u.Email, date(u.SignupDate), u.Country, u.AgeGroup, u.DeviceType}); err != nil {
			return err
		}
	}
	return nil
}

func encodeSubscriptions(w *csv.Writer, subs []dataset.Subscription) error {
	if err := w.Write(subscriptionsHeader); err != nil {
		return err
	}
	for _, s := range subs {
		end := ""
		if s.EndDate != nil {
			end = date(*s.EndDate)
		}
		if err := w.Write([]string{itoa(s.ID), itoa(s.UserID), s.Plan, itoa(s.MonthlyFee), date(s.StartDate), end, string(s.Status)}); err != nil {
			return err
		}
	}
	return nil
}

func encodeWatchHistory(w *csv.Writer, events []dataset.WatchEvent) error {
	if err := w.Write(watchHistoryHeader); err != nil {
		return err
	}
	for _, e := range events {
		if err := w.Write([]string{itoa(e.ID), itoa(e.UserID), itoa(e.CatalogID), date(e.WatchDate), itoa(e.WatchMinutes), e.DeviceType}); err != nil {
			return err
		}
	}
	return nil
}

func encodeRevenue(w *csv.Writer, rows []dataset.RevenueRow) error {
	if err := w.Write(revenueHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Month.Format(dataset.MonthLayout), itoa(r.TotalUsers), itoa(r.NewSignups), itoa(r.Cancellations), itoa(r.TotalRevenue)}); err != nil {
			return err
		}
	}
	return nil
}
