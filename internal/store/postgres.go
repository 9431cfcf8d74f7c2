package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/eloiseboudon/crossfit-audit/internal/db"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgUpsertAnalysis = `INSERT INTO analyses (id, name, metrics, result, overall_score, grade, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	metrics = EXCLUDED.metrics,
	result = EXCLUDED.result,
	overall_score = EXCLUDED.overall_score,
	grade = EXCLUDED.grade`
	pgGetAnalysis    = `SELECT id, name, metrics, result, overall_score, grade, created_at FROM analyses WHERE id = $1`
	pgDeleteAnalysis = `DELETE FROM analyses WHERE id = $1`
	pgListBenchmarks = `SELECT key, name, value, unit, category, description, updated_at FROM benchmarks ORDER BY category, key`
)

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"upsert_analysis": pgUpsertAnalysis,
	"get_analysis":    pgGetAnalysis,
	"delete_analysis": pgDeleteAnalysis,
	"list_benchmarks": pgListBenchmarks,
}

var analysisColumns = []string{"id", "name", "metrics", "result", "overall_score", "grade", "created_at"}

var benchmarkColumns = []string{"key", "name", "value", "unit", "category", "description", "updated_at"}

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

	// Statements are prepared only once the schema exists; Migrate runs on
	// a fresh connection before any of them is used.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		var ready bool
		if err := conn.QueryRow(ctx, `SELECT to_regclass('analyses') IS NOT NULL AND to_regclass('benchmarks') IS NOT NULL`).Scan(&ready); err != nil {
			return eris.Wrap(err, "postgres: check schema")
		}
		if !ready {
			return nil
		}
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL DEFAULT '',
	metrics       JSONB NOT NULL,
	result        JSONB,
	overall_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	grade         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS benchmarks (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	unit        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_grade ON analyses(grade);
CREATE INDEX IF NOT EXISTS idx_benchmarks_category ON benchmarks(category);
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

func (s *PostgresStore) SaveAnalysis(ctx context.Context, run *model.AnalysisRun) error {
	prepareRun(run)
	row, err := analysisRow(run)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, pgUpsertAnalysis, row...); err != nil {
		return eris.Wrapf(err, "postgres: upsert analysis %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) SaveAnalyses(ctx context.Context, runs []*model.AnalysisRun) error {
	if len(runs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(runs))
	for _, run := range runs {
		prepareRun(run)
		row, err := analysisRow(run)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if _, err := db.CopyFrom(ctx, s.pool, "analyses", analysisColumns, rows); err != nil {
		return eris.Wrap(err, "postgres: save analyses")
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisRun, error) {
	var (
		r                   model.AnalysisRun
		metrics, resultJSON []byte
		grade               string
	)
	err := s.pool.QueryRow(ctx, pgGetAnalysis, id).
		Scan(&r.ID, &r.Name, &metrics, &resultJSON, &r.OverallScore, &grade, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	r.Grade = model.Grade(grade)
	if err := decodeRun(&r, metrics, resultJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: decode run")
	}
	return &r, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error) {
	query := `SELECT id, name, metrics, overall_score, grade, created_at FROM analyses WHERE 1=1`
	var args []any
	argN := 1

	if filter.Name != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argN)
		args = append(args, "%"+filter.Name+"%")
		argN++
	}
	if filter.Grade != "" {
		query += fmt.Sprintf(` AND grade = $%d`, argN)
		args = append(args, string(filter.Grade))
		argN++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND overall_score >= $%d`, argN)
		args = append(args, filter.MinScore)
		argN++
	}
	if !filter.CreatedAfter.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, argN)
		args = append(args, filter.CreatedAfter)
		argN++
	}
	query += ` ORDER BY created_at DESC, id`

	query += fmt.Sprintf(` LIMIT $%d`, argN)
	args = append(args, limitOrDefault(filter.Limit))
	argN++
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		r, err := scanListedRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) DeleteAnalysis(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, pgDeleteAnalysis, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "analysis %s", id)
	}
	return nil
}

func (s *PostgresStore) ListBenchmarks(ctx context.Context) ([]model.Benchmark, error) {
	rows, err := s.pool.Query(ctx, pgListBenchmarks)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list benchmarks")
	}
	defer rows.Close()

	var out []model.Benchmark
	for rows.Next() {
		var b model.Benchmark
		if err := rows.Scan(&b.Key, &b.Name, &b.Value, &b.Unit, &b.Category, &b.Description, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan benchmark")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list benchmarks iterate")
}

func (s *PostgresStore) SeedBenchmarks(ctx context.Context, benchmarks []model.Benchmark) error {
	ts := now()
	rows := make([][]any, 0, len(benchmarks))
	for _, b := range benchmarks {
		rows = append(rows, []any{b.Key, b.Name, b.Value, b.Unit, b.Category, b.Description, ts})
	}
	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "benchmarks",
		Columns:      benchmarkColumns,
		ConflictKeys: []string{"key"},
	}, rows)
	return eris.Wrap(err, "postgres: seed benchmarks")
}

func analysisRow(run *model.AnalysisRun) ([]any, error) {
	metrics, result, err := encodeRun(run)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode run")
	}
	return []any{run.ID, run.Name, metrics, result, run.OverallScore, string(run.Grade), run.CreatedAt}, nil
}
