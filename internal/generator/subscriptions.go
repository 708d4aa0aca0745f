package generator

import (
	"context"
	"math/rand/v2"

	"subsim/internal/config"
	"subsim/internal/dataset"
)

// GenerateSubscriptions creates exactly one subscription per user, in user
// order. Cancellation is decided here: a Cancelled row carries its end date,
// an Active row never does.
func GenerateSubscriptions(ctx context.Context, cfg config.Generation, users []dataset.User) ([]dataset.Subscription, error) {
	spread := cfg.MaxSubscriptionMonths - cfg.MinSubscriptionMonths + 1

	subs := make([]dataset.Subscription, len(users))
	err := fillBlocks(ctx, cfg.Seed, stageSubscriptions, len(users), cfg.Workers, func(r *rand.Rand, lo, hi int) {
		for i := lo; i < hi; i++ {
			u := users[i]
			plan := cfg.Plans[r.IntN(len(cfg.Plans))]
			months := cfg.MinSubscriptionMonths + r.IntN(spread)
			candidateEnd := dataset.AddMonths(u.SignupDate, months)

			s := dataset.Subscription{
				ID:         i + 1,
				UserID:     u.ID,
				Plan:       plan.Name,
				MonthlyFee: plan.Fee,
				StartDate:  u.SignupDate,
				Status:     dataset.Active,
			}
			if r.Float64() < cfg.CancelProbability {
				s.Status = dataset.Cancelled
				s.EndDate = &candidateEnd
			}
			subs[i] = s
		}
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}
