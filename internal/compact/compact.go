// Package compact runs store maintenance: duplicate removal, space
// reclamation, and a table-count report. It operates on the store
// independently of the refresh pipeline.
package compact

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/macrodash/macrodash/internal/store"
)

// Options selects which maintenance steps run.
type Options struct {
	Deduplicate bool // remove duplicate logical rows, keeping the newest insertion
	ReportOnly  bool // inspect without modifying anything
}

// Report summarizes one maintenance pass.
type Report struct {
	Duplicates  store.Counts `json:"duplicates"`
	Removed     store.Counts `json:"removed,omitempty"`
	TableCounts store.Counts `json:"table_counts"`
	Vacuumed    bool         `json:"vacuumed"`
}

// Run executes a maintenance pass. Report-only mode counts duplicates and
// rows without touching the store. Otherwise the pass optionally
// deduplicates, then vacuums and re-analyzes.
func Run(ctx context.Context, st store.Store, opts Options) (*Report, error) {
	log := zap.L().With(zap.String("component", "compact"))

	dupes, err := st.CountDuplicates(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "compact: count duplicates")
	}
	report := &Report{Duplicates: dupes}

	if !opts.ReportOnly {
		if opts.Deduplicate {
			removed, err := st.Deduplicate(ctx)
			if err != nil {
				return nil, eris.Wrap(err, "compact: deduplicate")
			}
			report.Removed = removed
			for table, n := range removed {
				if n > 0 {
					log.Info("removed duplicates", zap.String("table", table), zap.Int64("rows", n))
				}
			}
		}
		if err := st.Vacuum(ctx); err != nil {
			return nil, eris.Wrap(err, "compact: vacuum")
		}
		report.Vacuumed = true
	}

	counts, err := st.TableCounts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "compact: table counts")
	}
	report.TableCounts = counts

	log.Info("compaction pass finished",
		zap.Bool("report_only", opts.ReportOnly),
		zap.Bool("deduplicated", opts.Deduplicate && !opts.ReportOnly),
	)
	return report, nil
}
