package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Upsert describes a keyed bulk write. Only reference tables (the basket
// catalog) are keyed; time-series tables are append-only and go through
// CopyFrom instead.
type Upsert struct {
	Table   string   // target table, optionally schema-qualified
	Columns []string // columns being written, in row order
	Keys    []string // unique-constraint columns
}

// BulkUpsert stages rows in a temp table via COPY and merges them into the
// target with INSERT ... ON CONFLICT DO UPDATE. Non-key columns take the
// incoming values. Returns the number of rows merged.
func BulkUpsert(ctx context.Context, pool Pool, u Upsert, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(u.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(u.Keys) == 0 {
		return 0, eris.New("db: upsert: no key columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx)

	staging := "_staging_" + strings.ReplaceAll(u.Table, ".", "_")

	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{staging}.Sanitize(),
		sanitizeTable(u.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create staging table for %s", u.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{staging}, u.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into staging table for %s", u.Table)
	}

	cols := quoteAndJoin(u.Columns)
	mergeSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(u.Table),
		cols,
		cols,
		pgx.Identifier{staging}.Sanitize(),
		quoteAndJoin(u.Keys),
		strings.Join(excludedAssignments(u), ", "),
	)
	tag, err := tx.Exec(ctx, mergeSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", u.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// excludedAssignments builds "col = EXCLUDED.col" clauses for every
// non-key column.
func excludedAssignments(u Upsert) []string {
	keys := make(map[string]bool, len(u.Keys))
	for _, k := range u.Keys {
		keys[k] = true
	}
	var out []string
	for _, c := range u.Columns {
		if keys[c] {
			continue
		}
		q := pgx.Identifier{c}.Sanitize()
		out = append(out, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}
	return out
}

// sanitizeTable quotes a table name, splitting schema-qualified names.
func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
