package metrics

import (
	"sort"
	"time"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

// AggregateByCategory groups price records by date and category (via the
// catalog lookup) and derives per-group stats: arithmetic mean of values,
// sum of weights, mean of the non-nil YoY changes, and the contribution to
// headline (mean YoY times total weight over 100, nil when no YoY values
// exist yet). Records whose series is not in the catalog are skipped.
// Output is sorted by date, then category name, for reproducibility.
//
// Averaging YoY changes across series before weighting is economically
// approximate (not a Laspeyres aggregation of the underlying values); it is
// the figure the dashboard has always reported and is preserved as-is.
func AggregateByCategory(records []model.PriceRecord, lookup func(seriesID string) (basket.Item, bool)) []model.BreakdownRecord {
	type groupKey struct {
		date     time.Time
		category string
	}
	type groupStats struct {
		values  []float64
		weights []float64
		yoys    []float64
	}

	groups := make(map[groupKey]*groupStats)
	for _, r := range records {
		item, ok := lookup(r.SeriesID)
		if !ok {
			continue
		}
		key := groupKey{date: r.Date, category: item.Category}
		g, ok := groups[key]
		if !ok {
			g = &groupStats{}
			groups[key] = g
		}
		g.values = append(g.values, r.Value)
		g.weights = append(g.weights, item.Weight)
		if r.YoYChange != nil {
			g.yoys = append(g.yoys, *r.YoYChange)
		}
	}

	out := make([]model.BreakdownRecord, 0, len(groups))
	for key, g := range groups {
		rec := model.BreakdownRecord{
			Date:     key.date,
			Category: key.category,
			Value:    mean(g.values),
			Weight:   sum(g.weights),
		}
		if len(g.yoys) > 0 {
			yoy := mean(g.yoys)
			rec.YoYChange = &yoy
			rec.Contribution = model.Float(yoy * rec.Weight / 100)
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return sum(vs) / float64(len(vs))
}
