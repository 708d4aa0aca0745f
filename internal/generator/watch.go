package generator

import (
	"context"
	"errors"
	"math/rand/v2"

	"subsim/internal/config"
	"subsim/internal/dataset"
)

// MinWatchMinutes is the lower bound of a watch duration: 10% of the nominal
// runtime rounded down, never below one minute.
func MinWatchMinutes(nominal int) int {
	return max(1, nominal/10)
}

// WatchStats summarizes a watch-history run.
type WatchStats struct {
	Events    int
	Fallbacks int
}

// GenerateWatchHistory samples cfg.WatchEvents events over users and items.
// Watch dates ignore subscription windows.
func GenerateWatchHistory(ctx context.Context, cfg config.Generation, users []dataset.User, items []dataset.CatalogItem) ([]dataset.WatchEvent, WatchStats, error) {
	if len(users) == 0 || len(items) == 0 {
		return nil, WatchStats{}, errors.New("watch history needs at least one user and one catalog item")
	}

	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, WatchStats{}, err
	}
	days := dataset.DaysBetween(start, end)
	fallbackSpread := cfg.FallbackMaxMinutes - cfg.FallbackMinMinutes + 1

	events := make([]dataset.WatchEvent, cfg.WatchEvents)
	err = fillBlocks(ctx, cfg.Seed, stageWatchHistory, len(events), cfg.Workers, func(r *rand.Rand, lo, hi int) {
		for i := lo; i < hi; i++ {
			u := users[r.IntN(len(users))]
			item := items[r.IntN(len(items))]
			date := randomDate(r, start, days)

			nominal := item.Runtime.Minutes
			fallback := !item.Runtime.Parsed
			if fallback {
				nominal = cfg.FallbackMinMinutes + r.IntN(fallbackSpread)
			}
			floor := MinWatchMinutes(nominal)

			events[i] = dataset.WatchEvent{
				ID:             i + 1,
				UserID:         u.ID,
				CatalogID:      item.ID,
				WatchDate:      date,
				WatchMinutes:   floor + r.IntN(nominal-floor+1),
				DeviceType:     u.DeviceType,
				NominalMinutes: nominal,
				Fallback:       fallback,
			}
		}
	})
	if err != nil {
		return nil, WatchStats{}, err
	}

	stats := WatchStats{Events: len(events)}
	for _, e := range events {
		if e.Fallback {
			stats.Fallbacks++
		}
	}
	return events, stats, nil
}
