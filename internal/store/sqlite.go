package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/resilience"
)

var (
	newID = func() string { return uuid.New().String() }
	now   = func() time.Time { return time.Now().UTC() }
)

// SQLiteStore implements Store using modernc.org/sqlite.
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

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	metrics       TEXT NOT NULL,
	result        TEXT,
	overall_score REAL NOT NULL DEFAULT 0,
	grade         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS benchmarks (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	value       REAL NOT NULL,
	unit        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_grade ON analyses(grade);
CREATE INDEX IF NOT EXISTS idx_benchmarks_category ON benchmarks(category);
`

const sqliteUpsertAnalysis = `INSERT INTO analyses (id, name, metrics, result, overall_score, grade, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	metrics = excluded.metrics,
	result = excluded.result,
	overall_score = excluded.overall_score,
	grade = excluded.grade`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, run *model.AnalysisRun) error {
	return s.SaveAnalyses(ctx, []*model.AnalysisRun{run})
}

func (s *SQLiteStore) SaveAnalyses(ctx context.Context, runs []*model.AnalysisRun) error {
	if len(runs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(runs))
	for _, run := range runs {
		prepareRun(run)
		metricsJSON, resultJSON, err := encodeRun(run)
		if err != nil {
			return eris.Wrap(err, "sqlite: encode run")
		}
		var result any
		if resultJSON != nil {
			result = string(resultJSON)
		}
		rows = append(rows, []any{
			run.ID, run.Name, string(metricsJSON), result,
			run.OverallScore, string(run.Grade), run.CreatedAt,
		})
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("sqlite", "save analyses")
	return resilience.Do(ctx, retry, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, sqliteUpsertAnalysis)
			if err != nil {
				return eris.Wrap(err, "sqlite: prepare upsert analysis")
			}
			defer stmt.Close()

			for _, row := range rows {
				if _, err := stmt.ExecContext(ctx, row...); err != nil {
					return eris.Wrapf(err, "sqlite: upsert analysis %s", row[0])
				}
			}
			return nil
		})
	})
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, metrics, result, overall_score, grade, created_at FROM analyses WHERE id = ?`,
		id,
	)

	var (
		r           model.AnalysisRun
		metricsJSON string
		resultJSON  sql.NullString
		grade       string
	)
	err := row.Scan(&r.ID, &r.Name, &metricsJSON, &resultJSON, &r.OverallScore, &grade, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}
	r.Grade = model.Grade(grade)

	var result []byte
	if resultJSON.Valid {
		result = []byte(resultJSON.String)
	}
	if err := decodeRun(&r, []byte(metricsJSON), result); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode run")
	}
	return &r, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error) {
	query := `SELECT id, name, metrics, overall_score, grade, created_at FROM analyses WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Grade != "" {
		query += ` AND grade = ?`
		args = append(args, string(filter.Grade))
	}
	if filter.MinScore > 0 {
		query += ` AND overall_score >= ?`
		args = append(args, filter.MinScore)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC, id`

	query += ` LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		r, err := scanListedRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete analysis %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) ListBenchmarks(ctx context.Context) ([]model.Benchmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, value, unit, category, description, updated_at FROM benchmarks ORDER BY category, key`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list benchmarks")
	}
	defer rows.Close()

	var out []model.Benchmark
	for rows.Next() {
		var b model.Benchmark
		if err := rows.Scan(&b.Key, &b.Name, &b.Value, &b.Unit, &b.Category, &b.Description, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan benchmark")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list benchmarks iterate")
}

func (s *SQLiteStore) SeedBenchmarks(ctx context.Context, benchmarks []model.Benchmark) error {
	if len(benchmarks) == 0 {
		return nil
	}
	ts := now()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, b := range benchmarks {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO benchmarks (key, name, value, unit, category, description, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					name = excluded.name,
					value = excluded.value,
					unit = excluded.unit,
					category = excluded.category,
					description = excluded.description,
					updated_at = excluded.updated_at`,
				b.Key, b.Name, b.Value, b.Unit, b.Category, b.Description, ts,
			)
			if err != nil {
				return eris.Wrapf(err, "sqlite: upsert benchmark %s", b.Key)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanListedRun reads a row of the list projection, which has no result.
func scanListedRun(row scannable) (*model.AnalysisRun, error) {
	var (
		r           model.AnalysisRun
		metricsJSON []byte
		grade       string
	)
	if err := row.Scan(&r.ID, &r.Name, &metricsJSON, &r.OverallScore, &grade, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Grade = model.Grade(grade)
	if err := decodeRun(&r, metricsJSON, nil); err != nil {
		return nil, err
	}
	return &r, nil
}

func encodeRun(run *model.AnalysisRun) (metrics, result []byte, err error) {
	metrics, err = json.Marshal(run.Metrics)
	if err != nil {
		return nil, nil, eris.Wrap(err, "marshal metrics")
	}
	if run.Result != nil {
		result, err = json.Marshal(run.Result)
		if err != nil {
			return nil, nil, eris.Wrap(err, "marshal result")
		}
	}
	return metrics, result, nil
}

func decodeRun(r *model.AnalysisRun, metrics, result []byte) error {
	if err := json.Unmarshal(metrics, &r.Metrics); err != nil {
		return eris.Wrap(err, "unmarshal metrics")
	}
	if len(result) > 0 {
		r.Result = &model.AnalysisResult{}
		if err := json.Unmarshal(result, r.Result); err != nil {
			return eris.Wrap(err, "unmarshal result")
		}
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
