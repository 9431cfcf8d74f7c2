// Package analyzer runs the scorer, the insight engine and the prediction
// engine over one metrics record and assembles the result.
package analyzer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/estimate"
	"github.com/eloiseboudon/crossfit-audit/internal/insight"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/scorer"
)

// Analyzer sequences a complete analysis.
type Analyzer struct {
	cfg       config.EngineConfig
	insights  *insight.Engine
	estimator *estimate.Estimator
}

// New validates cfg and creates an Analyzer.
func New(cfg config.EngineConfig) (*Analyzer, error) {
	if err := scorer.ValidateConfig(cfg.Scoring); err != nil {
		return nil, eris.Wrap(err, "analyzer: invalid engine config")
	}
	return &Analyzer{
		cfg:       cfg,
		insights:  insight.NewEngine(cfg.Rules),
		estimator: estimate.New(cfg.Projection),
	}, nil
}

// Run analyzes m. When purchasePrice is set and positive, the result also
// carries an acquisition viability computed from the current annual profit.
// GeneratedAt is left for the caller to stamp.
func (a *Analyzer) Run(ctx context.Context, m model.Metrics, purchasePrice *float64) (*model.AnalysisResult, error) {
	if err := m.Validate(); err != nil {
		return nil, eris.Wrap(err, "analyzer: validate metrics")
	}

	log := zap.L().With(zap.Int("members", m.ActiveSubscriptions))

	scores := scorer.Score(m, a.cfg.Scoring)
	log.Debug("analyzer: scores computed",
		zap.Float64("overall", scores.Score),
		zap.String("grade", string(scores.Grade)),
	)

	insights, err := a.insights.Generate(ctx, m, scores)
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: generate insights")
	}
	log.Debug("analyzer: insights generated", zap.Int("count", len(insights)))

	projections := a.estimator.Project(m, insights)

	result := &model.AnalysisResult{
		Summary: model.GymSummary{
			Members:        m.ActiveSubscriptions,
			MonthlyRevenue: m.MonthlyRevenue,
			AreaM2:         m.TotalAreaM2,
			Coaches:        m.Coaches,
		},
		Scores:      scores,
		Insights:    insights,
		Projections: projections,
	}

	if purchasePrice != nil && *purchasePrice > 0 {
		v := a.estimator.AcquisitionViability(*purchasePrice,
			projections.Optimization.Current.AnnualProfit, a.estimator.DefaultLoan())
		result.Acquisition = &v
		log.Debug("analyzer: acquisition evaluated",
			zap.Float64("price", v.Price),
			zap.Bool("viable", v.Viable),
		)
	}

	return result, nil
}

// QuickScore validates m and returns its scores only.
func (a *Analyzer) QuickScore(m model.Metrics) (model.OverallScore, error) {
	if err := m.Validate(); err != nil {
		return model.OverallScore{}, eris.Wrap(err, "analyzer: validate metrics")
	}
	return scorer.Score(m, a.cfg.Scoring), nil
}

// Config returns the engine configuration the analyzer was built with.
func (a *Analyzer) Config() config.EngineConfig {
	return a.cfg
}
