package generator

import (
	"context"
	"fmt"

	"subsim/internal/catalog"
	"subsim/internal/config"
	"subsim/internal/dataset"
	"subsim/internal/integrity"
	"subsim/internal/revenue"

	"github.com/rs/zerolog/log"
)

// Generate runs the whole pipeline over an already loaded catalog. Every
// stage materializes its table before the next one starts, and the result
// is checked for integrity before it is returned, so callers never see a
// partially consistent dataset.
func Generate(ctx context.Context, cfg config.Generation, items []dataset.CatalogItem) (dataset.Dataset, error) {
	if len(items) == 0 {
		return dataset.Dataset{}, catalog.ErrEmptyCatalog
	}
	if err := cfg.Validate(); err != nil {
		return dataset.Dataset{}, err
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		return dataset.Dataset{}, err
	}

	ds := dataset.Dataset{Catalog: items}

	if ds.Users, err = GenerateUsers(ctx, cfg); err != nil {
		return dataset.Dataset{}, fmt.Errorf("users: %w", err)
	}
	log.Info().Int("rows", len(ds.Users)).Msg("Users table generated")

	if ds.Subscriptions, err = GenerateSubscriptions(ctx, cfg, ds.Users); err != nil {
		return dataset.Dataset{}, fmt.Errorf("subscriptions: %w", err)
	}
	log.Info().Int("rows", len(ds.Subscriptions)).Msg("Subscriptions table generated")

	var stats WatchStats
	if ds.WatchHistory, stats, err = GenerateWatchHistory(ctx, cfg, ds.Users, ds.Catalog); err != nil {
		return dataset.Dataset{}, fmt.Errorf("watch history: %w", err)
	}
	log.Info().
		Int("rows", stats.Events).
		Int("duration_fallbacks", stats.Fallbacks).
		Msg("Watch history table generated")

	ds.Revenue = revenue.Summarize(ds.Users, ds.Subscriptions, start, end)
	log.Info().Int("rows", len(ds.Revenue)).Msg("Revenue summary table generated")

	report := integrity.Check(ds, integrity.Options{
		FallbackMaxMinutes: cfg.FallbackMaxMinutes,
		Start:              start,
		End:                end,
		PlanFee:            cfg.PlanFee,
	})
	if err := report.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	return ds, nil
}
