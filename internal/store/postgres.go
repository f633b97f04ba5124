package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/db"
	"github.com/macrodash/macrodash/internal/model"
)

// PostgresStore implements Store using pgxpool. Bulk writes go through the
// COPY protocol; the basket catalog is seeded with a staged upsert.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// The data tables carry no unique constraints: appends are duplicate-tolerant
// and deduplication is deferred to the compact maintenance path.
const postgresMigration = `
CREATE TABLE IF NOT EXISTS price_data (
	series_id   TEXT NOT NULL,
	date        DATE NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	yoy_change  DOUBLE PRECISION,
	mom_change  DOUBLE PRECISION,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inflation_summary (
	date         DATE NOT NULL,
	headline_cpi DOUBLE PRECISION,
	core_cpi     DOUBLE PRECISION,
	food_cpi     DOUBLE PRECISION,
	energy_cpi   DOUBLE PRECISION,
	headline_yoy DOUBLE PRECISION,
	core_yoy     DOUBLE PRECISION,
	food_yoy     DOUBLE PRECISION,
	energy_yoy   DOUBLE PRECISION,
	headline_mom DOUBLE PRECISION,
	core_mom     DOUBLE PRECISION,
	food_mom     DOUBLE PRECISION,
	energy_mom   DOUBLE PRECISION,
	inserted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS category_breakdown (
	date                     DATE NOT NULL,
	category                 TEXT NOT NULL,
	value                    DOUBLE PRECISION NOT NULL,
	weight                   DOUBLE PRECISION NOT NULL,
	yoy_change               DOUBLE PRECISION,
	contribution_to_headline DOUBLE PRECISION,
	inserted_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS refresh_log (
	refresh_id        BIGSERIAL PRIMARY KEY,
	data_source       TEXT NOT NULL,
	refresh_start     TIMESTAMPTZ NOT NULL,
	refresh_end       TIMESTAMPTZ,
	status            TEXT NOT NULL DEFAULT 'running',
	records_processed BIGINT NOT NULL DEFAULT 0,
	error_message     TEXT
);

CREATE TABLE IF NOT EXISTS basket_items (
	series_id        TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	category         TEXT NOT NULL,
	subcategory      TEXT,
	weight           DOUBLE PRECISION NOT NULL,
	update_frequency TEXT
);

CREATE INDEX IF NOT EXISTS idx_price_data_series_date ON price_data(series_id, date);
CREATE INDEX IF NOT EXISTS idx_price_data_date ON price_data(date);
CREATE INDEX IF NOT EXISTS idx_inflation_summary_date ON inflation_summary(date);
CREATE INDEX IF NOT EXISTS idx_category_breakdown_date ON category_breakdown(date, category);
CREATE INDEX IF NOT EXISTS idx_refresh_log_start ON refresh_log(refresh_start);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

var (
	priceColumns     = []string{"series_id", "date", "value", "yoy_change", "mom_change"}
	summaryColumns   = []string{"date", "headline_cpi", "core_cpi", "food_cpi", "energy_cpi", "headline_yoy", "core_yoy", "food_yoy", "energy_yoy", "headline_mom", "core_mom", "food_mom", "energy_mom"}
	breakdownColumns = []string{"date", "category", "value", "weight", "yoy_change", "contribution_to_headline"}
	basketColumns    = []string{"series_id", "name", "category", "subcategory", "weight", "update_frequency"}
)

func priceRows(records []model.PriceRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.SeriesID, r.Date, r.Value, r.YoYChange, r.MoMChange}
	}
	return rows
}

func summaryRows(records []model.SummaryRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.Date, r.HeadlineCPI, r.CoreCPI, r.FoodCPI, r.EnergyCPI,
			r.HeadlineYoY, r.CoreYoY, r.FoodYoY, r.EnergyYoY,
			r.HeadlineMoM, r.CoreMoM, r.FoodMoM, r.EnergyMoM,
		}
	}
	return rows
}

func breakdownRows(records []model.BreakdownRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.Date, r.Category, r.Value, r.Weight, r.YoYChange, r.Contribution}
	}
	return rows
}

func (s *PostgresStore) AppendPrices(ctx context.Context, records []model.PriceRecord) (int64, error) {
	return db.CopyFrom(ctx, s.pool, "price_data", priceColumns, priceRows(records))
}

func (s *PostgresStore) AppendSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error) {
	return db.CopyFrom(ctx, s.pool, "inflation_summary", summaryColumns, summaryRows(records))
}

func (s *PostgresStore) AppendBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error) {
	return db.CopyFrom(ctx, s.pool, "category_breakdown", breakdownColumns, breakdownRows(records))
}

func (s *PostgresStore) ReplacePrices(ctx context.Context, records []model.PriceRecord) (int64, error) {
	return s.replace(ctx, "price_data", priceColumns, priceRows(records))
}

func (s *PostgresStore) ReplaceSummaries(ctx context.Context, records []model.SummaryRecord) (int64, error) {
	return s.replace(ctx, "inflation_summary", summaryColumns, summaryRows(records))
}

func (s *PostgresStore) ReplaceBreakdowns(ctx context.Context, records []model.BreakdownRecord) (int64, error) {
	return s.replace(ctx, "category_breakdown", breakdownColumns, breakdownRows(records))
}

// replace clears a table and loads the given rows in one transaction.
func (s *PostgresStore) replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear %s", table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: COPY INTO %s", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "postgres: commit replace %s", table)
	}
	return n, nil
}

func (s *PostgresStore) LastPriceDate(ctx context.Context) (*time.Time, error) {
	var d *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(date) FROM price_data`).Scan(&d)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: last price date")
	}
	return d, nil
}

func (s *PostgresStore) Freshness(ctx context.Context) ([]model.Freshness, error) {
	out := make([]model.Freshness, 0, len(dataTables))
	for _, table := range dataTables {
		var latest *time.Time
		var count int64
		q := fmt.Sprintf(`SELECT MAX(date), COUNT(*) FROM %s`, table)
		if err := s.pool.QueryRow(ctx, q).Scan(&latest, &count); err != nil {
			return nil, eris.Wrapf(err, "postgres: freshness for %s", table)
		}
		out = append(out, model.Freshness{Source: table, LatestDate: latest, RowCount: count})
	}
	return out, nil
}

func (s *PostgresStore) LatestPriceValues(ctx context.Context) ([]LatestValue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (series_id) series_id, date, value, yoy_change
		 FROM price_data
		 ORDER BY series_id, date DESC, inserted_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest price values")
	}
	defer rows.Close()

	var out []LatestValue
	for rows.Next() {
		var lv LatestValue
		if err := rows.Scan(&lv.SeriesID, &lv.Date, &lv.Value, &lv.YoYChange); err != nil {
			return nil, eris.Wrap(err, "postgres: scan latest value")
		}
		out = append(out, lv)
	}
	return out, eris.Wrap(rows.Err(), "postgres: latest price values iterate")
}

func (s *PostgresStore) StartRefresh(ctx context.Context, dataSource string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO refresh_log (data_source, refresh_start, status, records_processed)
		 VALUES ($1, $2, $3, 0) RETURNING refresh_id`,
		dataSource, time.Now().UTC(), string(model.RefreshRunning),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: start refresh")
	}
	return id, nil
}

func (s *PostgresStore) CompleteRefresh(ctx context.Context, refreshID int64, recordsProcessed int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE refresh_log SET refresh_end = $1, status = $2, records_processed = $3 WHERE refresh_id = $4`,
		time.Now().UTC(), string(model.RefreshCompleted), recordsProcessed, refreshID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete refresh %d", refreshID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("refresh not found: %d", refreshID)
	}
	return nil
}

func (s *PostgresStore) FailRefresh(ctx context.Context, refreshID int64, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE refresh_log SET refresh_end = $1, status = $2, error_message = $3 WHERE refresh_id = $4`,
		time.Now().UTC(), string(model.RefreshFailed), errMsg, refreshID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail refresh %d", refreshID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("refresh not found: %d", refreshID)
	}
	return nil
}

func (s *PostgresStore) ListRefreshes(ctx context.Context, limit int) ([]model.RefreshLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT refresh_id, data_source, refresh_start, refresh_end, status, records_processed, error_message
		 FROM refresh_log ORDER BY refresh_id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list refreshes")
	}
	defer rows.Close()

	var entries []model.RefreshLogEntry
	for rows.Next() {
		var e model.RefreshLogEntry
		var errMsg *string
		var status string
		if err := rows.Scan(&e.RefreshID, &e.DataSource, &e.RefreshStart, &e.RefreshEnd, &status, &e.RecordsProcessed, &errMsg); err != nil {
			return nil, eris.Wrap(err, "postgres: scan refresh log")
		}
		e.Status = model.RefreshStatus(status)
		if errMsg != nil {
			e.ErrorMessage = *errMsg
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list refreshes iterate")
}

func (s *PostgresStore) SeedBasket(ctx context.Context, items []basket.Item) (int64, error) {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.SeriesID, it.Name, it.Category, it.Subcategory, it.Weight, it.UpdateFrequency}
	}
	return db.BulkUpsert(ctx, s.pool, db.Upsert{
		Table:   "basket_items",
		Columns: basketColumns,
		Keys:    []string{"series_id"},
	}, rows)
}

func (s *PostgresStore) CountDuplicates(ctx context.Context) (Counts, error) {
	counts := make(Counts, len(dataTables))
	for _, table := range dataTables {
		keys := strings.Join(dedupKeys[table], ", ")
		q := fmt.Sprintf(
			`SELECT (SELECT COUNT(*) FROM %s) - (SELECT COUNT(*) FROM (SELECT DISTINCT %s FROM %s) AS d)`,
			table, keys, table,
		)
		var n int64
		if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "postgres: count duplicates in %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func (s *PostgresStore) Deduplicate(ctx context.Context) (Counts, error) {
	removed := make(Counts, len(dataTables))
	for _, table := range dataTables {
		keys := strings.Join(dedupKeys[table], ", ")
		// Keep the newest insertion of each logical row.
		q := fmt.Sprintf(
			`DELETE FROM %s WHERE ctid IN (
				SELECT ctid FROM (
					SELECT ctid, ROW_NUMBER() OVER (PARTITION BY %s ORDER BY inserted_at DESC, ctid DESC) AS rn
					FROM %s
				) AS ranked WHERE rn > 1
			)`,
			table, keys, table,
		)
		tag, err := s.pool.Exec(ctx, q)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: deduplicate %s", table)
		}
		removed[table] = tag.RowsAffected()
	}
	return removed, nil
}

func (s *PostgresStore) Vacuum(ctx context.Context) error {
	for _, table := range dataTables {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf(`VACUUM ANALYZE %s`, table)); err != nil {
			return eris.Wrapf(err, "postgres: vacuum %s", table)
		}
	}
	return nil
}

func (s *PostgresStore) TableCounts(ctx context.Context) (Counts, error) {
	counts := make(Counts, len(allTables))
	for _, table := range allTables {
		var n int64
		if err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "postgres: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}
