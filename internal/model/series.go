// Package model defines the record types shared across the refresh pipeline.
package model

import "time"

// Observation is a single raw data point returned by the provider.
// Observations are transient; only derived PriceRecords are persisted.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesData groups the observations fetched for one series, ascending by date.
type SeriesData struct {
	Name     string        `json:"name"`
	SeriesID string        `json:"series_id"`
	Obs      []Observation `json:"observations"`
}

// PriceRecord is one persisted row of price_data. YoY and MoM are nil until
// enough history exists (12 and 1 prior observations respectively).
type PriceRecord struct {
	SeriesID  string    `json:"series_id"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	YoYChange *float64  `json:"yoy_change,omitempty"`
	MoMChange *float64  `json:"mom_change,omitempty"`
}

// SummaryRecord is one persisted row of inflation_summary. A row exists only
// for dates where the headline series has a value; missing secondary series
// leave their fields nil.
type SummaryRecord struct {
	Date        time.Time `json:"date"`
	HeadlineCPI *float64  `json:"headline_cpi,omitempty"`
	CoreCPI     *float64  `json:"core_cpi,omitempty"`
	FoodCPI     *float64  `json:"food_cpi,omitempty"`
	EnergyCPI   *float64  `json:"energy_cpi,omitempty"`
	HeadlineYoY *float64  `json:"headline_yoy,omitempty"`
	CoreYoY     *float64  `json:"core_yoy,omitempty"`
	FoodYoY     *float64  `json:"food_yoy,omitempty"`
	EnergyYoY   *float64  `json:"energy_yoy,omitempty"`
	HeadlineMoM *float64  `json:"headline_mom,omitempty"`
	CoreMoM     *float64  `json:"core_mom,omitempty"`
	FoodMoM     *float64  `json:"food_mom,omitempty"`
	EnergyMoM   *float64  `json:"energy_mom,omitempty"`
}

// BreakdownRecord is one persisted row of category_breakdown.
// Contribution is mean category YoY times total category weight over 100,
// nil when no series in the group has a YoY value yet.
type BreakdownRecord struct {
	Date         time.Time `json:"date"`
	Category     string    `json:"category"`
	Value        float64   `json:"value"`
	Weight       float64   `json:"weight"`
	YoYChange    *float64  `json:"yoy_change,omitempty"`
	Contribution *float64  `json:"contribution_to_headline,omitempty"`
}

// RefreshStatus is the lifecycle state of a refresh_log row.
type RefreshStatus string

const (
	RefreshRunning   RefreshStatus = "running"
	RefreshCompleted RefreshStatus = "completed"
	RefreshFailed    RefreshStatus = "failed"
)

// RefreshLogEntry is one row of the append-only refresh_log audit trail.
type RefreshLogEntry struct {
	RefreshID        int64         `json:"refresh_id"`
	DataSource       string        `json:"data_source"`
	RefreshStart     time.Time     `json:"refresh_start"`
	RefreshEnd       *time.Time    `json:"refresh_end,omitempty"`
	Status           RefreshStatus `json:"status"`
	RecordsProcessed int64         `json:"records_processed"`
	ErrorMessage     string        `json:"error_message,omitempty"`
}

// Freshness reports the most recent stored date and row count for one table.
type Freshness struct {
	Source     string     `json:"source"`
	LatestDate *time.Time `json:"latest_date,omitempty"`
	RowCount   int64      `json:"total_records"`
}

// Float is a convenience constructor for optional numeric fields.
func Float(v float64) *float64 { return &v }
