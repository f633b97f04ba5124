// Package refresh orchestrates the fetch, calculate, write, back-up cycle.
package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/fred"
	"github.com/macrodash/macrodash/internal/metrics"
	"github.com/macrodash/macrodash/internal/model"
	"github.com/macrodash/macrodash/internal/store"
)

// Fetcher is the provider-facing surface the engine drives. Satisfied by
// *fred.Client.
type Fetcher interface {
	FetchAll(ctx context.Context, series []fred.Series, since *time.Time, yearsBack int) (*fred.FetchResult, error)
}

// Options tunes the engine. Zero values fall back to the defaults below.
type Options struct {
	DataSource     string // refresh_log data_source label; default "FRED"
	YearsBack      int    // full-refresh history window; default 5
	LookbackDays   int    // incremental revision buffer; default 30
	StaleAfterDays int    // freshness SLA; default 45
	Rebuild        bool   // full refresh replaces tables instead of appending
}

const (
	defaultDataSource     = "FRED"
	defaultYearsBack      = 5
	defaultLookbackDays   = 30
	defaultStaleAfterDays = 45
)

// Outcome reports what one refresh run produced.
type Outcome struct {
	PriceRecords     int64
	SummaryRecords   int64
	BreakdownRecords int64
	SeriesSucceeded  int
	SeriesFailed     int
}

func (o *Outcome) total() int64 {
	return o.PriceRecords + o.SummaryRecords + o.BreakdownRecords
}

// Engine drives one refresh cycle against explicitly injected collaborators.
type Engine struct {
	store   store.Store
	client  Fetcher
	catalog *basket.Catalog
	backup  *Backup // nil disables snapshots
	opts    Options
	now     func() time.Time
}

// New creates an engine. backup may be nil to disable snapshot writing.
func New(st store.Store, client Fetcher, catalog *basket.Catalog, backup *Backup, opts Options) *Engine {
	if opts.DataSource == "" {
		opts.DataSource = defaultDataSource
	}
	if opts.YearsBack <= 0 {
		opts.YearsBack = defaultYearsBack
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = defaultLookbackDays
	}
	if opts.StaleAfterDays <= 0 {
		opts.StaleAfterDays = defaultStaleAfterDays
	}
	return &Engine{
		store:   st,
		client:  client,
		catalog: catalog,
		backup:  backup,
		opts:    opts,
		now:     time.Now,
	}
}

// RunFull refetches the full history window unconditionally. yearsBack <= 0
// uses the configured default.
func (e *Engine) RunFull(ctx context.Context, yearsBack int) (*Outcome, error) {
	if yearsBack <= 0 {
		yearsBack = e.opts.YearsBack
	}
	return e.run(ctx, "full", nil, yearsBack)
}

// RunIncremental fetches from the last stored date minus the lookback buffer.
// The buffer absorbs upstream revisions of recently published values. With no
// stored data yet it delegates to a full run.
func (e *Engine) RunIncremental(ctx context.Context) (*Outcome, error) {
	log := zap.L().With(zap.String("component", "refresh.engine"))

	last, err := e.store.LastPriceDate(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "refresh: check freshness")
	}
	if last == nil {
		log.Info("no stored data, delegating to full refresh")
		return e.run(ctx, "full", nil, e.opts.YearsBack)
	}

	if e.Stale(e.now(), last) {
		log.Warn("stored data is stale",
			zap.Time("last_date", *last),
			zap.Int("stale_after_days", e.opts.StaleAfterDays),
		)
	}

	since := last.AddDate(0, 0, -e.opts.LookbackDays)
	return e.run(ctx, "incremental", &since, 0)
}

// Stale reports whether the newest stored observation is older than the
// configured SLA.
func (e *Engine) Stale(now time.Time, last *time.Time) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) > time.Duration(e.opts.StaleAfterDays)*24*time.Hour
}

func (e *Engine) run(ctx context.Context, mode string, since *time.Time, yearsBack int) (*Outcome, error) {
	runID := uuid.New().String()
	log := zap.L().With(
		zap.String("component", "refresh.engine"),
		zap.String("run_id", runID),
		zap.String("mode", mode),
	)
	log.Info("refresh starting", zap.String("data_source", e.opts.DataSource))

	refreshID, logged := e.startLog(ctx, log)

	items := e.catalog.Primary()
	series := make([]fred.Series, len(items))
	for i, it := range items {
		series[i] = fred.Series{Name: it.Name, ID: it.SeriesID}
	}

	result, err := e.client.FetchAll(ctx, series, since, yearsBack)
	if err != nil {
		err = eris.Wrap(err, "refresh: fetch")
		e.failLog(ctx, log, refreshID, logged, err)
		return nil, err
	}
	if result.Succeeded == 0 {
		err := eris.Errorf("refresh: all %d series failed to fetch", result.Attempted)
		e.failLog(ctx, log, refreshID, logged, err)
		return nil, err
	}

	prices := metrics.ComputeAll(result.Series)
	summaries := metrics.SummarizeHeadline(prices, e.catalog.HeadlineMap())
	breakdowns := metrics.AggregateByCategory(prices, e.catalog.BasketItemBySeries)

	e.snapshot(log, prices, summaries, breakdowns)

	outcome := &Outcome{
		SeriesSucceeded: result.Succeeded,
		SeriesFailed:    result.Failed,
	}

	replace := mode == "full" && e.opts.Rebuild
	if outcome.PriceRecords, err = e.writePrices(ctx, prices, replace); err != nil {
		err = eris.Wrap(err, "refresh: write prices")
		e.failLog(ctx, log, refreshID, logged, err)
		return nil, err
	}
	if outcome.SummaryRecords, err = e.writeSummaries(ctx, summaries, replace); err != nil {
		err = eris.Wrap(err, "refresh: write summaries")
		e.failLog(ctx, log, refreshID, logged, err)
		return nil, err
	}
	if outcome.BreakdownRecords, err = e.writeBreakdowns(ctx, breakdowns, replace); err != nil {
		err = eris.Wrap(err, "refresh: write breakdowns")
		e.failLog(ctx, log, refreshID, logged, err)
		return nil, err
	}

	if logged {
		if err := e.store.CompleteRefresh(ctx, refreshID, outcome.total()); err != nil {
			log.Warn("refresh log update failed", zap.Error(err))
		}
	}

	log.Info("refresh complete",
		zap.Int64("price_records", outcome.PriceRecords),
		zap.Int64("summary_records", outcome.SummaryRecords),
		zap.Int64("breakdown_records", outcome.BreakdownRecords),
		zap.Int("series_succeeded", outcome.SeriesSucceeded),
		zap.Int("series_failed", outcome.SeriesFailed),
	)
	return outcome, nil
}

func (e *Engine) writePrices(ctx context.Context, records []model.PriceRecord, replace bool) (int64, error) {
	if replace {
		return e.store.ReplacePrices(ctx, records)
	}
	return e.store.AppendPrices(ctx, records)
}

func (e *Engine) writeSummaries(ctx context.Context, records []model.SummaryRecord, replace bool) (int64, error) {
	if replace {
		return e.store.ReplaceSummaries(ctx, records)
	}
	return e.store.AppendSummaries(ctx, records)
}

func (e *Engine) writeBreakdowns(ctx context.Context, records []model.BreakdownRecord, replace bool) (int64, error) {
	if replace {
		return e.store.ReplaceBreakdowns(ctx, records)
	}
	return e.store.AppendBreakdowns(ctx, records)
}

// startLog opens a running refresh_log row. The audit trail is best-effort:
// a failed log write is warned about and the run proceeds without one.
func (e *Engine) startLog(ctx context.Context, log *zap.Logger) (int64, bool) {
	id, err := e.store.StartRefresh(ctx, e.opts.DataSource)
	if err != nil {
		log.Warn("refresh log write failed", zap.Error(err))
		return 0, false
	}
	return id, true
}

// failLog best-effort marks the refresh_log row failed.
func (e *Engine) failLog(ctx context.Context, log *zap.Logger, refreshID int64, logged bool, cause error) {
	log.Error("refresh failed", zap.Error(cause))
	if !logged {
		return
	}
	if err := e.store.FailRefresh(ctx, refreshID, cause.Error()); err != nil {
		log.Warn("refresh log update failed", zap.Error(err))
	}
}

// snapshot best-effort writes disaster-recovery CSVs of the batches.
func (e *Engine) snapshot(log *zap.Logger, prices []model.PriceRecord, summaries []model.SummaryRecord, breakdowns []model.BreakdownRecord) {
	if e.backup == nil {
		return
	}
	paths, err := e.backup.Snapshot(prices, summaries, breakdowns)
	if err != nil {
		log.Warn("backup snapshot failed", zap.Error(err))
		return
	}
	log.Info("backup snapshot written", zap.Strings("paths", paths))
}
