package generator

import (
	"context"
	"testing"

	"subsim/internal/config"
	"subsim/internal/dataset"
)

func TestSubscriptions_CancelProbabilityExtremes(t *testing.T) {
	cfg := config.Default().Generation
	cfg.Users = 200

	users, err := GenerateUsers(context.Background(), cfg)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}

	cfg.CancelProbability = 0
	subs, err := GenerateSubscriptions(context.Background(), cfg, users)
	if err != nil {
		t.Fatalf("GenerateSubscriptions failed: %v", err)
	}
	for _, s := range subs {
		if s.Status != dataset.Active || s.EndDate != nil {
			t.Fatalf("Expected every subscription active, got %+v", s)
		}
	}

	cfg.CancelProbability = 1
	subs, err = GenerateSubscriptions(context.Background(), cfg, users)
	if err != nil {
		t.Fatalf("GenerateSubscriptions failed: %v", err)
	}
	for _, s := range subs {
		if s.Status != dataset.Cancelled || s.EndDate == nil || s.EndDate.Before(s.StartDate) {
			t.Fatalf("Expected every subscription cancelled with a valid end, got %+v", s)
		}
	}
}

func TestSubscriptions_FixedDuration(t *testing.T) {
	cfg := config.Default().Generation
	cfg.Users = 50
	cfg.CancelProbability = 1
	cfg.MinSubscriptionMonths = 12
	cfg.MaxSubscriptionMonths = 12

	users, err := GenerateUsers(context.Background(), cfg)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}
	subs, err := GenerateSubscriptions(context.Background(), cfg, users)
	if err != nil {
		t.Fatalf("GenerateSubscriptions failed: %v", err)
	}
	for _, s := range subs {
		if want := dataset.AddMonths(s.StartDate, 12); !s.EndDate.Equal(want) {
			t.Errorf("Subscription %d: expected end %s, got %s", s.ID, want.Format(dataset.DateLayout), s.EndDate.Format(dataset.DateLayout))
		}
	}
}

func TestUsers_EnumeratedFields(t *testing.T) {
	cfg := config.Default().Generation
	cfg.Users = 2500 // spans three blocks
	cfg.Countries = []string{"Chile"}
	cfg.AgeGroups = []string{"18-25", "60+"}

	users, err := GenerateUsers(context.Background(), cfg)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}

	emails := make(map[string]bool, len(users))
	for i, u := range users {
		if u.ID != i+1 {
			t.Fatalf("Expected dense id %d, got %d", i+1, u.ID)
		}
		if u.Country != "Chile" || (u.AgeGroup != "18-25" && u.AgeGroup != "60+") {
			t.Errorf("User %d has unexpected fields %s/%s", u.ID, u.Country, u.AgeGroup)
		}
		if emails[u.Email] {
			t.Errorf("Duplicate email %s", u.Email)
		}
		emails[u.Email] = true
	}
}
