package refresh

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/macrodash/macrodash/internal/model"
)

// Backup writes timestamped flat-file snapshots of each fetched batch.
// Snapshots are append-only disaster-recovery artifacts; nothing in the
// pipeline reads them back.
type Backup struct {
	dir string
	now func() time.Time
}

// NewBackup creates a snapshot writer rooted at dir.
func NewBackup(dir string) *Backup {
	return &Backup{dir: dir, now: time.Now}
}

// Snapshot writes one CSV per non-empty batch, named by batch kind and a
// shared timestamp. Returns the paths written.
func (b *Backup) Snapshot(prices []model.PriceRecord, summaries []model.SummaryRecord, breakdowns []model.BreakdownRecord) ([]string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "backup: create dir %s", b.dir)
	}
	stamp := b.now().UTC().Format("20060102_150405")

	var paths []string
	if len(prices) > 0 {
		p, err := b.writeCSV("price_data", stamp, priceHeader, priceCSVRows(prices))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if len(summaries) > 0 {
		p, err := b.writeCSV("inflation_summary", stamp, summaryHeader, summaryCSVRows(summaries))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if len(breakdowns) > 0 {
		p, err := b.writeCSV("category_breakdown", stamp, breakdownHeader, breakdownCSVRows(breakdowns))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (b *Backup) writeCSV(kind, stamp string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(b.dir, fmt.Sprintf("%s_%s.csv", kind, stamp))
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "backup: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", eris.Wrapf(err, "backup: write header %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", eris.Wrapf(err, "backup: write rows %s", path)
	}
	return path, nil
}

var (
	priceHeader     = []string{"series_id", "date", "value", "yoy_change", "mom_change"}
	summaryHeader   = []string{"date", "headline_cpi", "core_cpi", "food_cpi", "energy_cpi", "headline_yoy", "core_yoy", "food_yoy", "energy_yoy", "headline_mom", "core_mom", "food_mom", "energy_mom"}
	breakdownHeader = []string{"date", "category", "value", "weight", "yoy_change", "contribution_to_headline"}
)

func priceCSVRows(records []model.PriceRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.SeriesID,
			r.Date.Format("2006-01-02"),
			formatFloat(r.Value),
			formatOpt(r.YoYChange),
			formatOpt(r.MoMChange),
		}
	}
	return rows
}

func summaryCSVRows(records []model.SummaryRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Date.Format("2006-01-02"),
			formatOpt(r.HeadlineCPI), formatOpt(r.CoreCPI), formatOpt(r.FoodCPI), formatOpt(r.EnergyCPI),
			formatOpt(r.HeadlineYoY), formatOpt(r.CoreYoY), formatOpt(r.FoodYoY), formatOpt(r.EnergyYoY),
			formatOpt(r.HeadlineMoM), formatOpt(r.CoreMoM), formatOpt(r.FoodMoM), formatOpt(r.EnergyMoM),
		}
	}
	return rows
}

func breakdownCSVRows(records []model.BreakdownRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Date.Format("2006-01-02"),
			r.Category,
			formatFloat(r.Value),
			formatFloat(r.Weight),
			formatOpt(r.YoYChange),
			formatOpt(r.Contribution),
		}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
