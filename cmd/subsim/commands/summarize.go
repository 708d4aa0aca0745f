package commands

import (
	"subsim/internal/revenue"
	"subsim/internal/tables"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	summarizeDir   string
	summarizeStart string
	summarizeEnd   string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Recompute revenue_summary.csv from existing users and subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.OutputDir
		if summarizeDir != "" {
			dir = summarizeDir
		}
		if summarizeStart != "" {
			cfg.Generation.StartDate = summarizeStart
		}
		if summarizeEnd != "" {
			cfg.Generation.EndDate = summarizeEnd
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		start, end, err := cfg.Generation.DateRange()
		if err != nil {
			return err
		}

		users, err := tables.ReadUsers(dir)
		if err != nil {
			return err
		}
		subs, err := tables.ReadSubscriptions(dir)
		if err != nil {
			return err
		}

		rows := revenue.Summarize(users, subs, start, end)
		if err := tables.WriteRevenue(dir, rows); err != nil {
			return err
		}
		log.Info().Str("dir", dir).Int("rows", len(rows)).Msg("Revenue summary table regenerated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&summarizeDir, "dir", "d", "", "Directory holding users.csv and subscriptions.csv (default: output dir)")
	summarizeCmd.Flags().StringVar(&summarizeStart, "start", "", "First day of the date range (YYYY-MM-DD)")
	summarizeCmd.Flags().StringVar(&summarizeEnd, "end", "", "Last day of the date range (YYYY-MM-DD)")
}
