package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

func lookupFor(items map[string]basket.Item) func(string) (basket.Item, bool) {
	return func(id string) (basket.Item, bool) {
		it, ok := items[id]
		return it, ok
	}
}

func TestAggregateByCategory_Contribution(t *testing.T) {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]basket.Item{
		"A": {SeriesID: "A", Category: "Food and Beverages", Weight: 2.0},
		"B": {SeriesID: "B", Category: "Food and Beverages", Weight: 3.0},
	}
	records := []model.PriceRecord{
		price("A", d, 100, model.Float(4.0)),
		price("B", d, 200, model.Float(6.0)),
	}

	out := AggregateByCategory(records, lookupFor(items))
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, "Food and Beverages", g.Category)
	assert.InDelta(t, 150.0, g.Value, 1e-9)
	assert.InDelta(t, 5.0, g.Weight, 1e-9)
	require.NotNil(t, g.YoYChange)
	assert.InDelta(t, 5.0, *g.YoYChange, 1e-9)
	require.NotNil(t, g.Contribution)
	// mean_yoy * total_weight / 100 = 5.0 * 5.0 / 100
	assert.InDelta(t, 0.25, *g.Contribution, 1e-9)
}

func TestAggregateByCategory_NilYoYExcludedFromMean(t *testing.T) {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]basket.Item{
		"A": {SeriesID: "A", Category: "Housing", Weight: 36.17},
		"B": {SeriesID: "B", Category: "Housing", Weight: 7.69},
	}
	records := []model.PriceRecord{
		price("A", d, 100, model.Float(4.2)),
		price("B", d, 200, nil),
	}

	out := AggregateByCategory(records, lookupFor(items))
	require.Len(t, out, 1)
	require.NotNil(t, out[0].YoYChange)
	assert.InDelta(t, 4.2, *out[0].YoYChange, 1e-9)
	assert.InDelta(t, 43.86, out[0].Weight, 1e-9)
}

func TestAggregateByCategory_AllNilYoYYieldsNilContribution(t *testing.T) {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]basket.Item{
		"A": {SeriesID: "A", Category: "Apparel", Weight: 2.47},
	}
	records := []model.PriceRecord{price("A", d, 100, nil)}

	out := AggregateByCategory(records, lookupFor(items))
	require.Len(t, out, 1)
	assert.Nil(t, out[0].YoYChange)
	assert.Nil(t, out[0].Contribution)
}

func TestAggregateByCategory_UnknownSeriesSkipped(t *testing.T) {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]basket.Item{
		"A": {SeriesID: "A", Category: "Recreation", Weight: 5.31},
	}
	records := []model.PriceRecord{
		price("A", d, 100, nil),
		price("CPIAUCSL", d, 314, nil), // headline index, not a basket item
	}

	out := AggregateByCategory(records, lookupFor(items))
	require.Len(t, out, 1)
	assert.Equal(t, "Recreation", out[0].Category)
}

func TestAggregateByCategory_DeterministicOrdering(t *testing.T) {
	d1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]basket.Item{
		"H": {SeriesID: "H", Category: "Housing", Weight: 36.17},
		"F": {SeriesID: "F", Category: "Food and Beverages", Weight: 8.17},
	}
	records := []model.PriceRecord{
		price("H", d2, 1, nil),
		price("F", d2, 2, nil),
		price("H", d1, 3, nil),
		price("F", d1, 4, nil),
	}

	out := AggregateByCategory(records, lookupFor(items))
	require.Len(t, out, 4)
	assert.Equal(t, []string{"Food and Beverages", "Housing", "Food and Beverages", "Housing"},
		[]string{out[0].Category, out[1].Category, out[2].Category, out[3].Category})
	assert.Equal(t, d1, out[0].Date)
	assert.Equal(t, d1, out[1].Date)
	assert.Equal(t, d2, out[2].Date)
	assert.Equal(t, d2, out[3].Date)
}

func TestAggregateByCategory_CatalogLookup(t *testing.T) {
	cat := basket.Default()
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []model.PriceRecord{
		price("CUSR0000SAH1", d, 400, model.Float(5.5)), // Shelter
	}

	out := AggregateByCategory(records, cat.ItemBySeries)
	require.Len(t, out, 1)
	assert.Equal(t, "Housing", out[0].Category)
	assert.InDelta(t, 36.17, out[0].Weight, 1e-9)
}
