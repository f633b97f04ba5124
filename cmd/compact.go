package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/macrodash/macrodash/internal/compact"
	"github.com/macrodash/macrodash/internal/store"
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Run store maintenance",
	Long: `Count duplicate rows in the append-only data tables and reclaim space.

Refreshes append overlapping windows without deduplicating, so duplicates
accumulate by design. --deduplicate removes them, keeping the newest
insertion of each logical row. --report-only inspects without modifying.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dedup, _ := cmd.Flags().GetBool("deduplicate")
		reportOnly, _ := cmd.Flags().GetBool("report-only")

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "compact: open store")
		}
		defer st.Close()

		report, err := compact.Run(ctx, st, compact.Options{
			Deduplicate: dedup,
			ReportOnly:  reportOnly,
		})
		if err != nil {
			return err
		}

		for _, table := range sortedKeys(report.Duplicates) {
			fmt.Printf("%-20s %d duplicate rows", table, report.Duplicates[table])
			if report.Removed != nil {
				fmt.Printf(", %d removed", report.Removed[table])
			}
			fmt.Println()
		}
		fmt.Println()
		for _, table := range sortedKeys(report.TableCounts) {
			fmt.Printf("%-20s %d rows\n", table, report.TableCounts[table])
		}
		if report.Vacuumed {
			fmt.Println("\nVacuum complete")
		}
		return nil
	},
}

func sortedKeys(c store.Counts) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	compactCmd.Flags().Bool("deduplicate", false, "remove duplicate rows, keeping the newest insertion")
	compactCmd.Flags().Bool("report-only", false, "inspect without modifying the store")
	rootCmd.AddCommand(compactCmd)
}
