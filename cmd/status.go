package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/macrodash/macrodash/internal/refresh"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report store freshness and recent refreshes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "status: open store")
		}
		defer st.Close()

		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		engine := refresh.New(st, nil, catalog, nil, refresh.Options{
			StaleAfterDays: cfg.Refresh.StaleAfterDays,
		})

		fresh, err := st.Freshness(ctx)
		if err != nil {
			return eris.Wrap(err, "status: freshness")
		}

		now := time.Now()
		fmt.Println("Table freshness:")
		for _, f := range fresh {
			latest := "never"
			flag := ""
			if f.LatestDate != nil {
				latest = f.LatestDate.Format("2006-01-02")
			}
			if engine.Stale(now, f.LatestDate) {
				flag = "  STALE"
			}
			fmt.Printf("  %-20s latest=%-10s rows=%d%s\n", f.Source, latest, f.RowCount, flag)
		}

		entries, err := st.ListRefreshes(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status: list refreshes")
		}

		fmt.Println("\nRecent refreshes:")
		if len(entries) == 0 {
			fmt.Println("  none")
			return nil
		}
		for _, e := range entries {
			end := "-"
			if e.RefreshEnd != nil {
				end = e.RefreshEnd.Format(time.RFC3339)
			}
			fmt.Printf("  #%-4d %-6s %-10s start=%s end=%s records=%d",
				e.RefreshID, e.DataSource, e.Status, e.RefreshStart.Format(time.RFC3339), end, e.RecordsProcessed)
			if e.ErrorMessage != "" {
				fmt.Printf(" error=%q", e.ErrorMessage)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().Int("limit", 10, "number of refresh log entries to show")
	rootCmd.AddCommand(statusCmd)
}
