package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/macrodash/macrodash/internal/fetcher"
	"github.com/macrodash/macrodash/internal/fred"
	"github.com/macrodash/macrodash/internal/refresh"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch series and update the store",
	Long: `Fetch the primary CPI series from FRED, derive year-over-year, month-over-month,
and category metrics, and write them into the store.

By default runs an incremental refresh from the last stored date minus a
revision lookback buffer. Use --full to refetch the whole history window,
and --rebuild with --full to replace the tables instead of appending.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "refresh"))

		full, _ := cmd.Flags().GetBool("full")
		incremental, _ := cmd.Flags().GetBool("incremental")
		rebuild, _ := cmd.Flags().GetBool("rebuild")
		years, _ := cmd.Flags().GetInt("years")

		if full && incremental {
			return eris.New("refresh: --full and --incremental are mutually exclusive")
		}
		if rebuild && !full {
			return eris.New("refresh: --rebuild requires --full")
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "refresh: open store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "refresh: migrate")
		}

		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:      time.Duration(cfg.FRED.TimeoutSecs) * time.Second,
			MaxRetries:   cfg.FRED.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		client := fred.NewClient(f, fred.Options{
			APIKey:    cfg.FRED.APIKey,
			BaseURL:   cfg.FRED.BaseURL,
			PaceEvery: cfg.FRED.PaceEvery,
			PaceDelay: time.Duration(cfg.FRED.PaceDelayMS) * time.Millisecond,
		})

		var backup *refresh.Backup
		if cfg.Backup.Enabled {
			backup = refresh.NewBackup(cfg.Backup.Dir)
		}

		engine := refresh.New(st, client, catalog, backup, refresh.Options{
			YearsBack:      cfg.Refresh.YearsBack,
			LookbackDays:   cfg.Refresh.LookbackDays,
			StaleAfterDays: cfg.Refresh.StaleAfterDays,
			Rebuild:        rebuild,
		})

		var outcome *refresh.Outcome
		if full {
			outcome, err = engine.RunFull(ctx, years)
		} else {
			outcome, err = engine.RunIncremental(ctx)
		}
		if err != nil {
			log.Error("refresh failed", zap.Error(err))
			return err
		}

		fmt.Printf("Refresh complete: %d price, %d summary, %d breakdown records (%d/%d series)\n",
			outcome.PriceRecords, outcome.SummaryRecords, outcome.BreakdownRecords,
			outcome.SeriesSucceeded, outcome.SeriesSucceeded+outcome.SeriesFailed)
		return nil
	},
}

func init() {
	refreshCmd.Flags().Bool("full", false, "refetch the full history window")
	refreshCmd.Flags().Bool("incremental", false, "incremental refresh (the default)")
	refreshCmd.Flags().Bool("rebuild", false, "with --full, replace tables instead of appending")
	refreshCmd.Flags().Int("years", 0, "history window in years for --full (0 = configured default)")
	rootCmd.AddCommand(refreshCmd)
}
