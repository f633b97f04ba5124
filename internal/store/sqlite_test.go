package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// --- Price data ---

func TestSQLite_AppendPrices_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.AppendPrices(ctx, []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.4},
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-02-01"), Value: 309.7, YoYChange: model.Float(3.2), MoMChange: model.Float(0.4)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	latest, err := st.LatestPriceValues(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "CPIAUCSL", latest[0].SeriesID)
	assert.Equal(t, date(t, "2024-02-01"), latest[0].Date)
	assert.InDelta(t, 309.7, latest[0].Value, 1e-9)
	require.NotNil(t, latest[0].YoYChange)
	assert.InDelta(t, 3.2, *latest[0].YoYChange, 1e-9)
}

func TestSQLite_AppendPrices_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.AppendPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLite_AppendPrices_DuplicatesDoNotError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := model.PriceRecord{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.4}
	_, err := st.AppendPrices(ctx, []model.PriceRecord{rec})
	require.NoError(t, err)

	// Re-appending the same logical row succeeds; the table is append-only.
	_, err = st.AppendPrices(ctx, []model.PriceRecord{rec})
	require.NoError(t, err)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["price_data"])
}

func TestSQLite_ReplacePrices(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AppendPrices(ctx, []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2023-12-01"), Value: 307.0},
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.4},
	})
	require.NoError(t, err)

	n, err := st.ReplacePrices(ctx, []model.PriceRecord{
		{SeriesID: "CPILFESL", Date: date(t, "2024-01-01"), Value: 312.1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["price_data"])

	latest, err := st.LatestPriceValues(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "CPILFESL", latest[0].SeriesID)
}

func TestSQLite_LastPriceDate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	last, err := st.LastPriceDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = st.AppendPrices(ctx, []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-02-01"), Value: 309.7},
		{SeriesID: "CPILFESL", Date: date(t, "2024-01-01"), Value: 312.1},
	})
	require.NoError(t, err)

	last, err = st.LastPriceDate(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, date(t, "2024-02-01"), *last)
}

func TestSQLite_LatestPriceValues_DuplicateKeepsNewest(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AppendPrices(ctx, []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.4},
	})
	require.NoError(t, err)
	_, err = st.AppendPrices(ctx, []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.9},
	})
	require.NoError(t, err)

	latest, err := st.LatestPriceValues(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.InDelta(t, 308.9, latest[0].Value, 1e-9)
}

// --- Summary and breakdown ---

func TestSQLite_AppendSummaries_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.AppendSummaries(ctx, []model.SummaryRecord{
		{Date: date(t, "2024-01-01"), HeadlineCPI: model.Float(308.4), HeadlineYoY: model.Float(3.1)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fresh, err := st.Freshness(ctx)
	require.NoError(t, err)
	for _, f := range fresh {
		if f.Source == "inflation_summary" {
			assert.Equal(t, int64(1), f.RowCount)
			require.NotNil(t, f.LatestDate)
			assert.Equal(t, date(t, "2024-01-01"), *f.LatestDate)
		}
	}
}

func TestSQLite_AppendBreakdowns_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.AppendBreakdowns(ctx, []model.BreakdownRecord{
		{Date: date(t, "2024-01-01"), Category: "Housing", Value: 330.1, Weight: 44.4, YoYChange: model.Float(5.0), Contribution: model.Float(2.22)},
		{Date: date(t, "2024-01-01"), Category: "Transportation", Value: 270.5, Weight: 16.7},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["category_breakdown"])
}

// --- Freshness ---

func TestSQLite_Freshness_EmptyTables(t *testing.T) {
	st := newTestSQLiteStore(t)

	fresh, err := st.Freshness(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh, 3)
	for _, f := range fresh {
		assert.Nil(t, f.LatestDate)
		assert.Equal(t, int64(0), f.RowCount)
	}
}

// --- Refresh log ---

func TestSQLite_RefreshLog_CompleteLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.StartRefresh(ctx, "FRED")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	entries, err := st.ListRefreshes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.RefreshRunning, entries[0].Status)
	assert.Nil(t, entries[0].RefreshEnd)

	require.NoError(t, st.CompleteRefresh(ctx, id, 1234))

	entries, err = st.ListRefreshes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.RefreshCompleted, entries[0].Status)
	assert.Equal(t, int64(1234), entries[0].RecordsProcessed)
	assert.NotNil(t, entries[0].RefreshEnd)
}

func TestSQLite_RefreshLog_FailedLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.StartRefresh(ctx, "FRED")
	require.NoError(t, err)

	require.NoError(t, st.FailRefresh(ctx, id, "store write: disk full"))

	entries, err := st.ListRefreshes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.RefreshFailed, entries[0].Status)
	assert.Equal(t, "store write: disk full", entries[0].ErrorMessage)
}

func TestSQLite_RefreshLog_UpdateMissingRow(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRefresh(context.Background(), 9999, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh not found")
}

func TestSQLite_ListRefreshes_NewestFirst(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.StartRefresh(ctx, "FRED")
	require.NoError(t, err)
	second, err := st.StartRefresh(ctx, "FRED")
	require.NoError(t, err)

	entries, err := st.ListRefreshes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second, entries[0].RefreshID)
	assert.Greater(t, second, first)
}

// --- Basket seeding ---

func TestSQLite_SeedBasket_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	items := []basket.Item{
		{SeriesID: "CUSR0000SAH1", Name: "Shelter", Category: "Housing", Weight: 36.17},
		{SeriesID: "CUSR0000SAF11", Name: "Food at Home", Category: "Food and Beverages", Weight: 8.13},
	}

	n, err := st.SeedBasket(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Re-seeding with an updated weight keeps one row per series.
	items[0].Weight = 36.5
	_, err = st.SeedBasket(ctx, items)
	require.NoError(t, err)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["basket_items"])
}

// --- Compaction ---

func TestSQLite_CompactRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	batch := []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-01-01"), Value: 308.4},
		{SeriesID: "CPIAUCSL", Date: date(t, "2024-02-01"), Value: 309.7},
	}
	_, err := st.AppendPrices(ctx, batch)
	require.NoError(t, err)
	// Overlapping incremental re-append, newer values for the same dates.
	batch[0].Value = 308.5
	batch[1].Value = 309.8
	_, err = st.AppendPrices(ctx, batch)
	require.NoError(t, err)

	dupes, err := st.CountDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dupes["price_data"])
	assert.Equal(t, int64(0), dupes["inflation_summary"])

	removed, err := st.Deduplicate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed["price_data"])

	// Newest insertion survives for each date.
	latest, err := st.LatestPriceValues(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.InDelta(t, 309.8, latest[0].Value, 1e-9)

	dupes, err = st.CountDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dupes["price_data"])

	require.NoError(t, st.Vacuum(ctx))
}

func TestSQLite_Deduplicate_SummaryByDate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AppendSummaries(ctx, []model.SummaryRecord{
		{Date: date(t, "2024-01-01"), HeadlineCPI: model.Float(308.4)},
		{Date: date(t, "2024-01-01"), HeadlineCPI: model.Float(308.5)},
		{Date: date(t, "2024-02-01"), HeadlineCPI: model.Float(309.7)},
	})
	require.NoError(t, err)

	removed, err := st.Deduplicate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed["inflation_summary"])

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["inflation_summary"])
}
