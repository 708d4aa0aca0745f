package generator

import (
	"context"
	"math/rand/v2"

	"subsim/internal/config"
	"subsim/internal/dataset"
)

// GenerateUsers builds users 1..cfg.Users with signup dates drawn from the
// global range.
func GenerateUsers(ctx context.Context, cfg config.Generation) ([]dataset.User, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}
	days := dataset.DaysBetween(start, end)

	users := make([]dataset.User, cfg.Users)
	err = fillBlocks(ctx, cfg.Seed, stageUsers, len(users), cfg.Workers, func(r *rand.Rand, lo, hi int) {
		for i := lo; i < hi; i++ {
			id := i + 1
			name, email := randomIdentity(r, id)
			users[i] = dataset.User{
				ID:         id,
				Name:       name,
				Email:      email,
				SignupDate: randomDate(r, start, days),
				Country:    pick(r, cfg.Countries),
				AgeGroup:   pick(r, cfg.AgeGroups),
				DeviceType: pick(r, cfg.DeviceTypes),
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
