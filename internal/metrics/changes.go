// Package metrics computes derived inflation metrics from raw observation
// series. All functions are pure: no I/O, deterministic output ordering.
package metrics

import (
	"github.com/macrodash/macrodash/internal/model"
)

// yoyPeriods is the observation offset for year-over-year change. The window
// is positional, not calendar-based: a gap in monthly data shifts the window
// by the same number of observations. That is the documented policy for this
// pipeline, matching how the dashboard has always reported revisions.
const yoyPeriods = 12

// ComputeChanges derives one PriceRecord per observation of a series, with
// YoY and MoM percentage changes. Observations must be ascending by date.
// The first yoyPeriods (resp. 1) records carry nil change values, never zero.
func ComputeChanges(sd model.SeriesData) []model.PriceRecord {
	records := make([]model.PriceRecord, 0, len(sd.Obs))
	for i, obs := range sd.Obs {
		rec := model.PriceRecord{
			SeriesID: sd.SeriesID,
			Date:     obs.Date,
			Value:    obs.Value,
		}
		if i >= yoyPeriods {
			rec.YoYChange = pctChange(sd.Obs[i-yoyPeriods].Value, obs.Value)
		}
		if i >= 1 {
			rec.MoMChange = pctChange(sd.Obs[i-1].Value, obs.Value)
		}
		records = append(records, rec)
	}
	return records
}

// ComputeAll maps ComputeChanges over every series, concatenating the results
// in series order.
func ComputeAll(series []model.SeriesData) []model.PriceRecord {
	var records []model.PriceRecord
	for _, sd := range series {
		records = append(records, ComputeChanges(sd)...)
	}
	return records
}

// pctChange returns (curr/prev - 1) * 100, or nil when the base is zero.
func pctChange(prev, curr float64) *float64 {
	if prev == 0 {
		return nil
	}
	return model.Float((curr/prev - 1) * 100)
}
