package dataset

import "time"

// Status is the lifecycle state of a subscription.
type Status string

const (
	Active    Status = "Active"
	Cancelled Status = "Cancelled"
)

// Runtime is the nominal duration of a catalog item. Parsed is false when the
// free-text duration did not encode "<int> min"; Minutes is then zero.
type Runtime struct {
	Minutes int
	Parsed  bool
}

// CatalogItem is one watchable movie or show.
type CatalogItem struct {
	ID           int
	Title        string
	DurationText string
	Runtime      Runtime
}

// User is a synthetic subscriber.
type User struct {
	ID         int
	Name       string
	Email      string
	SignupDate time.Time
	Country    string
	AgeGroup   string
	DeviceType string
}

// Plan is a subscription tier and its monthly fee.
type Plan struct {
	Name string `yaml:"name" validate:"required"`
	Fee  int    `yaml:"fee" validate:"gte=0"`
}

// Subscription belongs to exactly one user. EndDate is set iff Status is Cancelled.
type Subscription struct {
	ID         int
	UserID     int
	Plan       string
	MonthlyFee int
	StartDate  time.Time
	EndDate    *time.Time
	Status     Status
}

// ActiveIn reports whether the subscription window overlaps [monthStart, monthEnd].
func (s Subscription) ActiveIn(monthStart, monthEnd time.Time) bool {
	if s.StartDate.After(monthEnd) {
		return false
	}
	if s.Status == Active {
		return true
	}
	return s.EndDate != nil && !s.EndDate.Before(monthStart)
}

// WatchEvent records a single viewing session.
type WatchEvent struct {
	ID           int
	UserID       int
	CatalogID    int
	WatchDate    time.Time
	WatchMinutes int
	DeviceType   string

	// NominalMinutes is the runtime the watch duration was bounded by and
	// Fallback reports whether it was sampled because the item has no parsed
	// runtime. Neither is exported; both are zero for events loaded from disk.
	NominalMinutes int
	Fallback       bool
}

// RevenueRow aggregates one calendar month.
type RevenueRow struct {
	Month         time.Time
	TotalUsers    int
	NewSignups    int
	Cancellations int
	TotalRevenue  int
}

// Dataset bundles every table of a run.
type Dataset struct {
	Catalog       []CatalogItem
	Users         []User
	Subscriptions []Subscription
	WatchHistory  []WatchEvent
	Revenue       []RevenueRow
}
