package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom streams rows into table over the COPY protocol. Every row must
// carry exactly one value per column; a ragged row aborts the copy before
// anything reaches the server.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, eris.Errorf("db: copy into %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	if n != int64(len(rows)) {
		return n, eris.Errorf("db: copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return n, nil
}
