package store

import (
	"context"
	"time"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

// LatestValue is the most recent stored observation for one series. When the
// same date was appended more than once, the newest insertion wins.
type LatestValue struct {
	SeriesID  string    `json:"series_id"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	YoYChange *float64  `json:"yoy_change,omitempty"`
}

// Counts maps table name to a row count.
type Counts map[string]int64

// Store defines the persistence interface for the refresh pipeline.
// Time-series tables (price_data, inflation_summary, category_breakdown) are
// append-only: Append* never rejects duplicates, and deduplication is a
// separate maintenance operation. basket_items is the only keyed table.
type Store interface {
	// Time-series writes
	AppendPrices(ctx context.Context, records []model.PriceRecord) (int64, error)
	AppendSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error)
	AppendBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error)
	ReplacePrices(ctx context.Context, records []model.PriceRecord) (int64, error)
	ReplaceSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error)
	ReplaceBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error)

	// Reads
	LastPriceDate(ctx context.Context) (*time.Time, error)
	Freshness(ctx context.Context) ([]model.Freshness, error)
	LatestPriceValues(ctx context.Context) ([]LatestValue, error)

	// Refresh log
	StartRefresh(ctx context.Context, dataSource string) (int64, error)
	CompleteRefresh(ctx context.Context, refreshID int64, recordsProcessed int64) error
	FailRefresh(ctx context.Context, refreshID int64, errMsg string) error
	ListRefreshes(ctx context.Context, limit int) ([]model.RefreshLogEntry, error)

	// Basket catalog
	SeedBasket(ctx context.Context, items []basket.Item) (int64, error)

	// Maintenance
	CountDuplicates(ctx context.Context) (Counts, error)
	Deduplicate(ctx context.Context) (Counts, error)
	Vacuum(ctx context.Context) error
	TableCounts(ctx context.Context) (Counts, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// dataTables are the append-only time-series tables, in report order.
var dataTables = []string{"price_data", "inflation_summary", "category_breakdown"}

// allTables adds the keyed and audit tables for count reports.
var allTables = []string{"price_data", "inflation_summary", "category_breakdown", "basket_items", "refresh_log"}

// dedupKeys maps each data table to the columns identifying a logical row.
var dedupKeys = map[string][]string{
	"price_data":         {"series_id", "date"},
	"inflation_summary":  {"date"},
	"category_breakdown": {"date", "category"},
}

const dateFormat = "2006-01-02"
