// Package insight turns a scored metrics record into prioritized
// recommendations.
package insight

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Rule inspects a record and emits zero or more insights. Rules must not
// mutate their arguments.
type Rule func(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight

// Family is a named group of related rules.
type Family struct {
	Name string
	Rule Rule
}

// Families returns the rule families in merge order.
func Families() []Family {
	return []Family{
		{Name: "financial", Rule: financialRules},
		{Name: "operational", Rule: operationalRules},
		{Name: "satisfaction", Rule: satisfactionRules},
		{Name: "growth", Rule: growthRules},
		{Name: "competitive", Rule: competitiveRules},
		{Name: "equipment", Rule: equipmentRules},
	}
}

// Engine evaluates every rule family against a record.
type Engine struct {
	rules    config.RulesConfig
	families []Family
}

// NewEngine creates an Engine with the given thresholds.
func NewEngine(rules config.RulesConfig) *Engine {
	return &Engine{rules: rules, families: Families()}
}

// Generate evaluates the rule families concurrently, merges their output in
// family order, assigns priorities and sorts by descending priority. Insights
// with equal priority keep their merge order.
func (e *Engine) Generate(ctx context.Context, m model.Metrics, s model.OverallScore) ([]model.Insight, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	slots := make([][]model.Insight, len(e.families))

	g, gCtx := errgroup.WithContext(ctx)
	for i, f := range e.families {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrapf(err, "insight: family %s", f.Name)
			}
			slots[i] = f.Rule(m, s, e.rules)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Insight
	for i, slot := range slots {
		zap.L().Debug("insight: family evaluated",
			zap.String("family", e.families[i].Name),
			zap.Int("insights", len(slot)),
		)
		all = append(all, slot...)
	}

	for i := range all {
		all[i].Priority = Priority(all[i])
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority > all[j].Priority
	})

	return all, nil
}

// Priority weighs impact (40%), ease of implementation (30%) and severity
// (30%) into a 0-100 score, rounded to 2 decimals.
func Priority(in model.Insight) float64 {
	p := (in.Impact/100)*0.4 +
		(1-in.Difficulty/100)*0.3 +
		in.Severity.Weight()*0.3
	return math.Round(p*100*100) / 100
}
