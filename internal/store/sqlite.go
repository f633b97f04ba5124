package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the default
// backend: a local analytical file database, WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Dates in the data tables are TEXT in ISO form so that MAX(date) and group
// keys compare lexicographically. The data tables carry no unique
// constraints: appends are duplicate-tolerant and deduplication is deferred
// to the compact maintenance path.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS price_data (
	series_id   TEXT NOT NULL,
	date        TEXT NOT NULL,
	value       REAL NOT NULL,
	yoy_change  REAL,
	mom_change  REAL,
	inserted_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS inflation_summary (
	date         TEXT NOT NULL,
	headline_cpi REAL,
	core_cpi     REAL,
	food_cpi     REAL,
	energy_cpi   REAL,
	headline_yoy REAL,
	core_yoy     REAL,
	food_yoy     REAL,
	energy_yoy   REAL,
	headline_mom REAL,
	core_mom     REAL,
	food_mom     REAL,
	energy_mom   REAL,
	inserted_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS category_breakdown (
	date                     TEXT NOT NULL,
	category                 TEXT NOT NULL,
	value                    REAL NOT NULL,
	weight                   REAL NOT NULL,
	yoy_change               REAL,
	contribution_to_headline REAL,
	inserted_at              DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS refresh_log (
	refresh_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	data_source       TEXT NOT NULL,
	refresh_start     DATETIME NOT NULL,
	refresh_end       DATETIME,
	status            TEXT NOT NULL DEFAULT 'running',
	records_processed INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT
);

CREATE TABLE IF NOT EXISTS basket_items (
	series_id        TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	category         TEXT NOT NULL,
	subcategory      TEXT,
	weight           REAL NOT NULL,
	update_frequency TEXT
);

CREATE INDEX IF NOT EXISTS idx_price_data_series_date ON price_data(series_id, date);
CREATE INDEX IF NOT EXISTS idx_price_data_date ON price_data(date);
CREATE INDEX IF NOT EXISTS idx_inflation_summary_date ON inflation_summary(date);
CREATE INDEX IF NOT EXISTS idx_category_breakdown_date ON category_breakdown(date, category);
CREATE INDEX IF NOT EXISTS idx_refresh_log_start ON refresh_log(refresh_start);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendPrices(ctx context.Context, records []model.PriceRecord) (int64, error) {
	return s.writePrices(ctx, records, false)
}

func (s *SQLiteStore) ReplacePrices(ctx context.Context, records []model.PriceRecord) (int64, error) {
	return s.writePrices(ctx, records, true)
}

func (s *SQLiteStore) writePrices(ctx context.Context, records []model.PriceRecord, replace bool) (int64, error) {
	if len(records) == 0 && !replace {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM price_data`); err != nil {
			return 0, eris.Wrap(err, "sqlite: clear price_data")
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_data (series_id, date, value, yoy_change, mom_change) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare price insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.SeriesID, r.Date.Format(dateFormat), r.Value, r.YoYChange, r.MoMChange,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert price %s %s", r.SeriesID, r.Date.Format(dateFormat))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit prices")
	}
	return int64(len(records)), nil
}

func (s *SQLiteStore) AppendSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error) {
	return s.writeSummaries(ctx, records, false)
}

func (s *SQLiteStore) ReplaceSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error) {
	return s.writeSummaries(ctx, records, true)
}

func (s *SQLiteStore) writeSummaries(ctx context.Context, records []model.SummaryRecord, replace bool) (int64, error) {
	if len(records) == 0 && !replace {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inflation_summary`); err != nil {
			return 0, eris.Wrap(err, "sqlite: clear inflation_summary")
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inflation_summary (
			date, headline_cpi, core_cpi, food_cpi, energy_cpi,
			headline_yoy, core_yoy, food_yoy, energy_yoy,
			headline_mom, core_mom, food_mom, energy_mom
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare summary insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format(dateFormat),
			r.HeadlineCPI, r.CoreCPI, r.FoodCPI, r.EnergyCPI,
			r.HeadlineYoY, r.CoreYoY, r.FoodYoY, r.EnergyYoY,
			r.HeadlineMoM, r.CoreMoM, r.FoodMoM, r.EnergyMoM,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert summary %s", r.Date.Format(dateFormat))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit summaries")
	}
	return int64(len(records)), nil
}

func (s *SQLiteStore) AppendBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error) {
	return s.writeBreakdowns(ctx, records, false)
}

func (s *SQLiteStore) ReplaceBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error) {
	return s.writeBreakdowns(ctx, records, true)
}

func (s *SQLiteStore) writeBreakdowns(ctx context.Context, records []model.BreakdownRecord, replace bool) (int64, error) {
	if len(records) == 0 && !replace {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM category_breakdown`); err != nil {
			return 0, eris.Wrap(err, "sqlite: clear category_breakdown")
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO category_breakdown (date, category, value, weight, yoy_change, contribution_to_headline)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare breakdown insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format(dateFormat), r.Category, r.Value, r.Weight, r.YoYChange, r.Contribution,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert breakdown %s %s", r.Category, r.Date.Format(dateFormat))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit breakdowns")
	}
	return int64(len(records)), nil
}

func (s *SQLiteStore) LastPriceDate(ctx context.Context) (*time.Time, error) {
	var maxDate sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM price_data`).Scan(&maxDate)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last price date")
	}
	if !maxDate.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, maxDate.String)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse stored date %q", maxDate.String)
	}
	return &t, nil
}

func (s *SQLiteStore) Freshness(ctx context.Context) ([]model.Freshness, error) {
	out := make([]model.Freshness, 0, len(dataTables))
	for _, table := range dataTables {
		var maxDate sql.NullString
		var count int64
		q := fmt.Sprintf(`SELECT MAX(date), COUNT(*) FROM %s`, table)
		if err := s.db.QueryRowContext(ctx, q).Scan(&maxDate, &count); err != nil {
			return nil, eris.Wrapf(err, "sqlite: freshness for %s", table)
		}
		f := model.Freshness{Source: table, RowCount: count}
		if maxDate.Valid {
			t, err := time.Parse(dateFormat, maxDate.String)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: parse stored date %q", maxDate.String)
			}
			f.LatestDate = &t
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *SQLiteStore) LatestPriceValues(ctx context.Context) ([]LatestValue, error) {
	// Latest date per series; among duplicate rows for that date the newest
	// insertion (max rowid) wins.
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.series_id, p.date, p.value, p.yoy_change
		 FROM price_data p
		 JOIN (SELECT series_id, MAX(date) AS max_date FROM price_data GROUP BY series_id) m
		   ON p.series_id = m.series_id AND p.date = m.max_date
		 WHERE p.rowid = (
		   SELECT MAX(rowid) FROM price_data q
		   WHERE q.series_id = p.series_id AND q.date = p.date
		 )
		 ORDER BY p.series_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest price values")
	}
	defer rows.Close()

	var out []LatestValue
	for rows.Next() {
		var lv LatestValue
		var dateStr string
		var yoy sql.NullFloat64
		if err := rows.Scan(&lv.SeriesID, &dateStr, &lv.Value, &yoy); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan latest value")
		}
		t, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse stored date %q", dateStr)
		}
		lv.Date = t
		if yoy.Valid {
			lv.YoYChange = &yoy.Float64
		}
		out = append(out, lv)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: latest price values iterate")
}

func (s *SQLiteStore) StartRefresh(ctx context.Context, dataSource string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_log (data_source, refresh_start, status, records_processed) VALUES (?, ?, ?, 0)`,
		dataSource, time.Now().UTC(), string(model.RefreshRunning),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: start refresh")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: refresh id")
	}
	return id, nil
}

func (s *SQLiteStore) CompleteRefresh(ctx context.Context, refreshID int64, recordsProcessed int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_log SET refresh_end = ?, status = ?, records_processed = ? WHERE refresh_id = ?`,
		time.Now().UTC(), string(model.RefreshCompleted), recordsProcessed, refreshID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete refresh %d", refreshID)
	}
	return checkRefreshUpdated(res, refreshID)
}

func (s *SQLiteStore) FailRefresh(ctx context.Context, refreshID int64, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_log SET refresh_end = ?, status = ?, error_message = ? WHERE refresh_id = ?`,
		time.Now().UTC(), string(model.RefreshFailed), errMsg, refreshID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail refresh %d", refreshID)
	}
	return checkRefreshUpdated(res, refreshID)
}

func (s *SQLiteStore) ListRefreshes(ctx context.Context, limit int) ([]model.RefreshLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT refresh_id, data_source, refresh_start, refresh_end, status, records_processed, error_message
		 FROM refresh_log ORDER BY refresh_id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list refreshes")
	}
	defer rows.Close()

	var entries []model.RefreshLogEntry
	for rows.Next() {
		var e model.RefreshLogEntry
		var end sql.NullTime
		var errMsg sql.NullString
		var status string
		if err := rows.Scan(&e.RefreshID, &e.DataSource, &e.RefreshStart, &end, &status, &e.RecordsProcessed, &errMsg); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan refresh log")
		}
		e.Status = model.RefreshStatus(status)
		if end.Valid {
			e.RefreshEnd = &end.Time
		}
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list refreshes iterate")
}

func (s *SQLiteStore) SeedBasket(ctx context.Context, items []basket.Item) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO basket_items (series_id, name, category, subcategory, weight, update_frequency)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(series_id) DO UPDATE SET
		   name = excluded.name,
		   category = excluded.category,
		   subcategory = excluded.subcategory,
		   weight = excluded.weight,
		   update_frequency = excluded.update_frequency`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare basket upsert")
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx,
			it.SeriesID, it.Name, it.Category, it.Subcategory, it.Weight, it.UpdateFrequency,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert basket item %s", it.SeriesID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit basket")
	}
	return int64(len(items)), nil
}

func (s *SQLiteStore) CountDuplicates(ctx context.Context) (Counts, error) {
	counts := make(Counts, len(dataTables))
	for _, table := range dataTables {
		keys := strings.Join(dedupKeys[table], ", ")
		q := fmt.Sprintf(
			`SELECT COUNT(*) - (SELECT COUNT(*) FROM (SELECT DISTINCT %s FROM %s)) FROM %s`,
			keys, table, table,
		)
		var n int64
		if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: count duplicates in %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func (s *SQLiteStore) Deduplicate(ctx context.Context) (Counts, error) {
	removed := make(Counts, len(dataTables))
	for _, table := range dataTables {
		keys := strings.Join(dedupKeys[table], ", ")
		// Keep the newest insertion of each logical row.
		q := fmt.Sprintf(
			`DELETE FROM %s WHERE rowid NOT IN (SELECT MAX(rowid) FROM %s GROUP BY %s)`,
			table, table, keys,
		)
		res, err := s.db.ExecContext(ctx, q)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: deduplicate %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: rows affected")
		}
		removed[table] = n
	}
	return removed, nil
}

func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return eris.Wrap(err, "sqlite: vacuum")
	}
	if _, err := s.db.ExecContext(ctx, `ANALYZE`); err != nil {
		return eris.Wrap(err, "sqlite: analyze")
	}
	return nil
}

func (s *SQLiteStore) TableCounts(ctx context.Context) (Counts, error) {
	counts := make(Counts, len(allTables))
	for _, table := range allTables {
		var n int64
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
		if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func checkRefreshUpdated(res sql.Result, refreshID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("refresh not found: %d", refreshID)
	}
	return nil
}
