package commands

import (
	"subsim/internal/catalog"
	"subsim/internal/integrity"
	"subsim/internal/tables"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	validateDir     string
	validateCatalog string
	validateStart   string
	validateEnd     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check references, fees, dates and revenue aggregates of an existing dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.OutputDir
		if validateDir != "" {
			dir = validateDir
		}
		catalogPath := cfg.CatalogPath
		if validateCatalog != "" {
			catalogPath = validateCatalog
		}
		if validateStart != "" {
			cfg.Generation.StartDate = validateStart
		}
		if validateEnd != "" {
			cfg.Generation.EndDate = validateEnd
		}
		if err := cfg.Generation.Validate(); err != nil {
			return err
		}
		start, end, err := cfg.Generation.DateRange()
		if err != nil {
			return err
		}

		items, err := catalog.Load(catalogPath)
		if err != nil {
			return err
		}
		ds, err := tables.ReadAll(dir)
		if err != nil {
			return err
		}
		ds.Catalog = items

		report := integrity.Check(ds, integrity.Options{
			FallbackMaxMinutes: cfg.Generation.FallbackMaxMinutes,
			Start:              start,
			End:                end,
			PlanFee:            cfg.Generation.PlanFee,
		})
		for _, v := range report.Violations {
			log.Warn().Str("table", v.Table).Int("row", v.Row).Msg(v.Reason)
		}
		log.Info().
			Int("users_invalid", report.Count("users")).
			Int("subscriptions_invalid", report.Count("subscriptions")).
			Int("watch_history_invalid", report.Count("watch_history")).
			Int("revenue_invalid", report.Count("revenue_summary")).
			Int("total", len(report.Violations)).
			Msg("Validation finished")
		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", "", "Directory holding the generated tables (default: output dir)")
	validateCmd.Flags().StringVar(&validateCatalog, "catalog", "", "Catalog CSV the dataset was generated from")
	validateCmd.Flags().StringVar(&validateStart, "start", "", "First day of the date range the dataset covers (YYYY-MM-DD)")
	validateCmd.Flags().StringVar(&validateEnd, "end", "", "Last day of the date range the dataset covers (YYYY-MM-DD)")
}
