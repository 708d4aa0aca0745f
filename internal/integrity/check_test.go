package integrity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"subsim/internal/dataset"
	"subsim/internal/revenue"
)

func validDataset() dataset.Dataset {
	jan := dataset.Day(2020, time.January, 1)
	end := dataset.Day(2020, time.July, 1)
	return dataset.Dataset{
		Catalog: []dataset.CatalogItem{
			{ID: 1, Title: "A", Runtime: dataset.Runtime{Minutes: 90, Parsed: true}},
			{ID: 2, Title: "B"},
		},
		Users: []dataset.User{{ID: 1, SignupDate: jan}, {ID: 2, SignupDate: jan}},
		Subscriptions: []dataset.Subscription{
			{ID: 1, UserID: 1, Plan: "Basic", MonthlyFee: 199, StartDate: jan, Status: dataset.Active},
			{ID: 2, UserID: 2, Plan: "Premium", MonthlyFee: 649, StartDate: jan, EndDate: &end, Status: dataset.Cancelled},
		},
		WatchHistory: []dataset.WatchEvent{
			{ID: 1, UserID: 1, CatalogID: 1, WatchDate: jan, WatchMinutes: 90},
			{ID: 2, UserID: 2, CatalogID: 2, WatchDate: end, WatchMinutes: 170},
		},
	}
}

func TestCheck_Clean(t *testing.T) {
	r := Check(validDataset(), Options{FallbackMaxMinutes: 180})
	if err := r.Err(); err != nil {
		t.Fatalf("Expected clean report, got %v", err)
	}
}

func TestCheck_DanglingReferences(t *testing.T) {
	ds := validDataset()
	ds.Subscriptions[1].UserID = 9
	ds.WatchHistory[0].UserID = 0
	ds.WatchHistory[1].CatalogID = 3

	r := Check(ds, Options{FallbackMaxMinutes: 180})
	if r.Count("subscriptions") != 1 {
		t.Errorf("Expected 1 subscription violation, got %d", r.Count("subscriptions"))
	}
	if r.Count("watch_history") != 2 {
		t.Errorf("Expected 2 watch violations, got %d", r.Count("watch_history"))
	}

	var ierr *Error
	if !errors.As(r.Err(), &ierr) || len(ierr.Violations) != 3 {
		t.Fatalf("Expected *Error with 3 violations, got %v", r.Err())
	}
	if !strings.Contains(ierr.Error(), "user_id 9 does not exist") {
		t.Errorf("Expected message to name the dangling id, got %q", ierr.Error())
	}
}

func TestCheck_Windows(t *testing.T) {
	ds := validDataset()
	before := dataset.Day(2019, time.December, 1)
	ds.Subscriptions[0].EndDate = &before
	ds.Subscriptions[1].EndDate = &before

	r := Check(ds, Options{FallbackMaxMinutes: 180})
	if r.Count("subscriptions") != 2 {
		t.Errorf("Expected active-with-end and inverted window, got %v", r.Violations)
	}

	ds = validDataset()
	ds.Subscriptions[1].EndDate = nil
	if Check(ds, Options{}).Count("subscriptions") != 1 {
		t.Error("Expected cancelled subscription without end date to be flagged")
	}
}

func TestCheck_WatchBounds(t *testing.T) {
	ds := validDataset()
	ds.WatchHistory[0].WatchMinutes = 91
	ds.WatchHistory[1].WatchMinutes = 0

	r := Check(ds, Options{FallbackMaxMinutes: 180})
	if r.Count("watch_history") != 2 {
		t.Errorf("Expected 2 bound violations, got %v", r.Violations)
	}

	// A recorded nominal value takes precedence over the fallback ceiling.
	ds = validDataset()
	ds.WatchHistory[1].NominalMinutes = 150
	if Check(ds, Options{FallbackMaxMinutes: 180}).Count("watch_history") != 1 {
		t.Error("Expected duration above the sampled nominal to be flagged")
	}
}

func TestCheck_DenseIDs(t *testing.T) {
	ds := validDataset()
	ds.Users[1].ID = 3
	ds.WatchHistory[1].ID = 1

	r := Check(ds, Options{FallbackMaxMinutes: 180})
	if r.Count("users") != 1 {
		t.Errorf("Expected gap in users to be flagged, got %v", r.Violations)
	}
	// user 2 no longer exists either
	if r.Count("subscriptions") != 1 {
		t.Errorf("Expected dangling subscription, got %v", r.Violations)
	}
	if r.Count("watch_history") != 2 {
		t.Errorf("Expected duplicate id and dangling user, got %v", r.Violations)
	}
}

func planFee(name string) (int, bool) {
	fee, ok := map[string]int{"Basic": 199, "Premium": 649}[name]
	return fee, ok
}

func fullOptions() Options {
	return Options{
		FallbackMaxMinutes: 180,
		Start:              dataset.Day(2020, time.January, 1),
		End:                dataset.Day(2020, time.July, 31),
		PlanFee:            planFee,
	}
}

func summarized() dataset.Dataset {
	ds := validDataset()
	opts := fullOptions()
	ds.Revenue = revenue.Summarize(ds.Users, ds.Subscriptions, opts.Start, opts.End)
	return ds
}

func TestCheck_FullOptionsClean(t *testing.T) {
	if err := Check(summarized(), fullOptions()).Err(); err != nil {
		t.Fatalf("Expected clean report, got %v", err)
	}
}

func TestCheck_Tampered(t *testing.T) {
	cases := map[string]struct {
		table  string
		mutate func(ds *dataset.Dataset)
	}{
		"inflated revenue":     {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue[2].TotalRevenue += 1000000 }},
		"negative total users": {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue[0].TotalUsers = -7 }},
		"extra signup":         {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue[1].NewSignups++ }},
		"missing cancellation": {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue[6].Cancellations = 0 }},
		"missing month":        {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue = ds.Revenue[:3] }},
		"shifted month":        {"revenue_summary", func(ds *dataset.Dataset) { ds.Revenue[0].Month = dataset.Day(2019, time.December, 1) }},
		"wrong fee":            {"subscriptions", func(ds *dataset.Dataset) { ds.Subscriptions[0].MonthlyFee = 1 }},
		"unknown plan":         {"subscriptions", func(ds *dataset.Dataset) { ds.Subscriptions[1].Plan = "Gold" }},
		"start differs":        {"subscriptions", func(ds *dataset.Dataset) { ds.Subscriptions[0].StartDate = dataset.Day(2020, time.February, 1) }},
		"signup before range":  {"users", func(ds *dataset.Dataset) { ds.Users[0].SignupDate = dataset.Day(2019, time.June, 1) }},
		"watch before range":   {"watch_history", func(ds *dataset.Dataset) { ds.WatchHistory[0].WatchDate = dataset.Day(1990, time.January, 1) }},
		"watch after range":    {"watch_history", func(ds *dataset.Dataset) { ds.WatchHistory[1].WatchDate = dataset.Day(2020, time.August, 1) }},
		"device differs":       {"watch_history", func(ds *dataset.Dataset) { ds.WatchHistory[0].DeviceType = "TV" }},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			ds := summarized()
			c.mutate(&ds)
			r := Check(ds, fullOptions())
			if r.Count(c.table) == 0 {
				t.Errorf("Expected a %s violation, got %v", c.table, r.Violations)
			}
		})
	}
}

func TestCheck_RevenueWithoutRange(t *testing.T) {
	ds := summarized()
	ds.Revenue[0].TotalRevenue = -1
	if err := Check(ds, Options{FallbackMaxMinutes: 180}).Err(); err != nil {
		t.Errorf("Expected aggregates to be skipped without a date range, got %v", err)
	}

	ds.Revenue[1].Month = ds.Revenue[0].Month
	if Check(ds, Options{FallbackMaxMinutes: 180}).Count("revenue_summary") != 1 {
		t.Error("Expected out-of-order months to be flagged")
	}
}
