package metrics

import (
	"sort"
	"time"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

// SummarizeHeadline joins headline, core, food, and energy price records by
// date into one summary row per date. A date is included only when the
// headline series has a value for it; absent secondary series leave their
// fields nil rather than dropping the row. Output is ascending by date.
func SummarizeHeadline(records []model.PriceRecord, headline map[string]string) []model.SummaryRecord {
	bySeries := make(map[string]map[time.Time]model.PriceRecord)
	for _, r := range records {
		m, ok := bySeries[r.SeriesID]
		if !ok {
			m = make(map[time.Time]model.PriceRecord)
			bySeries[r.SeriesID] = m
		}
		m[r.Date] = r
	}

	headlineID := headline[basket.RoleHeadline]
	headlineObs := bySeries[headlineID]
	if len(headlineObs) == 0 {
		return nil
	}

	dates := make([]time.Time, 0, len(headlineObs))
	for d := range headlineObs {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	summaries := make([]model.SummaryRecord, 0, len(dates))
	for _, d := range dates {
		row := model.SummaryRecord{Date: d}
		for role, seriesID := range headline {
			rec, ok := bySeries[seriesID][d]
			if !ok {
				continue
			}
			v := rec.Value
			switch role {
			case basket.RoleHeadline:
				row.HeadlineCPI = &v
				row.HeadlineYoY = rec.YoYChange
				row.HeadlineMoM = rec.MoMChange
			case basket.RoleCore:
				row.CoreCPI = &v
				row.CoreYoY = rec.YoYChange
				row.CoreMoM = rec.MoMChange
			case basket.RoleFood:
				row.FoodCPI = &v
				row.FoodYoY = rec.YoYChange
				row.FoodMoM = rec.MoMChange
			case basket.RoleEnergy:
				row.EnergyCPI = &v
				row.EnergyYoY = rec.YoYChange
				row.EnergyMoM = rec.MoMChange
			}
		}
		summaries = append(summaries, row)
	}
	return summaries
}
