package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrodash/macrodash/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_AppendPrices_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"price_data"}, priceColumns).WillReturnResult(2)

	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n, err := s.AppendPrices(context.Background(), []model.PriceRecord{
		{SeriesID: "CPIAUCSL", Date: d, Value: 308.4},
		{SeriesID: "CPIAUCSL", Date: d.AddDate(0, 1, 0), Value: 309.7},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendPrices_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.AppendPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastPriceDate_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT MAX\(date\) FROM price_data`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow((*time.Time)(nil)))

	last, err := s.LastPriceDate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartRefresh_ReturnsID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO refresh_log`).
		WithArgs("FRED", pgxmock.AnyArg(), string(model.RefreshRunning)).
		WillReturnRows(pgxmock.NewRows([]string{"refresh_id"}).AddRow(int64(7)))

	id, err := s.StartRefresh(context.Background(), "FRED")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRefresh_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE refresh_log SET`).
		WithArgs(pgxmock.AnyArg(), string(model.RefreshCompleted), int64(10), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRefresh(context.Background(), 42, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRefresh_RecordsMessage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE refresh_log SET`).
		WithArgs(pgxmock.AnyArg(), string(model.RefreshFailed), "store write: connection reset", int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailRefresh(context.Background(), 3, "store write: connection reset")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Deduplicate_ReportsRemoved(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM price_data WHERE ctid IN`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(`DELETE FROM inflation_summary WHERE ctid IN`).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM category_breakdown WHERE ctid IN`).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	removed, err := s.Deduplicate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{"price_data": 4, "inflation_summary": 0, "category_breakdown": 1}, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
