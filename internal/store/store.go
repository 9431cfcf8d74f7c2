// Package store persists analysis runs and market benchmarks.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/resilience"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing analysis runs.
type RunFilter struct {
	Name         string      `json:"name,omitempty"` // substring match
	Grade        model.Grade `json:"grade,omitempty"`
	MinScore     float64     `json:"min_score,omitempty"`
	CreatedAfter time.Time   `json:"created_after,omitempty"`
	Limit        int         `json:"limit,omitempty"`
	Offset       int         `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	// Runs. SaveAnalysis assigns ID and CreatedAt when they are unset and
	// replaces an existing run with the same ID. SaveAnalyses inserts new
	// runs in bulk. Listed runs carry no Result.
	SaveAnalysis(ctx context.Context, run *model.AnalysisRun) error
	SaveAnalyses(ctx context.Context, runs []*model.AnalysisRun) error
	GetAnalysis(ctx context.Context, id string) (*model.AnalysisRun, error)
	ListAnalyses(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// Benchmarks
	ListBenchmarks(ctx context.Context) ([]model.Benchmark, error)
	SeedBenchmarks(ctx context.Context, benchmarks []model.Benchmark) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend and applies the schema.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		retry := resilience.DefaultRetryConfig()
		retry.OnRetry = resilience.RetryLogger("postgres", "connect")
		s, err = resilience.DoVal(ctx, retry, func(ctx context.Context) (Store, error) {
			return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
		})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	zap.L().Info("store opened", zap.String("driver", cfg.Driver))
	return s, nil
}

// prepareRun fills the fields SaveAnalysis is responsible for.
func prepareRun(run *model.AnalysisRun) {
	if run.ID == "" {
		run.ID = newID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now()
	}
	if run.Result != nil {
		run.OverallScore = run.Result.Scores.Score
		run.Grade = run.Result.Scores.Grade
	}
}
