// Package estimate projects revenue, acquisition economics and the financial
// effect of acting on insights.
package estimate

import (
	"math"

	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Estimator computes projections from a metrics record.
type Estimator struct {
	cfg config.ProjectionConfig
}

// New creates an Estimator. Unset fields of cfg fall back to the defaults.
func New(cfg config.ProjectionConfig) *Estimator {
	def := config.DefaultProjectionConfig()
	if cfg.HorizonMonths <= 0 {
		cfg.HorizonMonths = def.HorizonMonths
	}
	if cfg.Deceleration <= 0 {
		cfg.Deceleration = def.Deceleration
	}
	if cfg.LTVMargin <= 0 {
		cfg.LTVMargin = def.LTVMargin
	}
	if cfg.LTVCACDivisor <= 0 {
		cfg.LTVCACDivisor = def.LTVCACDivisor
	}
	if cfg.LoanYears <= 0 {
		cfg.LoanYears = def.LoanYears
	}
	if cfg.LoanRatePct < 0 {
		cfg.LoanRatePct = def.LoanRatePct
	}
	if len(cfg.AdoptionScenarios) == 0 {
		cfg.AdoptionScenarios = def.AdoptionScenarios
	}
	return &Estimator{cfg: cfg}
}

// Config returns the effective projection configuration.
func (e *Estimator) Config() config.ProjectionConfig {
	return e.cfg
}

// DefaultLoan returns the configured financing terms.
func (e *Estimator) DefaultLoan() model.LoanTerms {
	return model.LoanTerms{Years: e.cfg.LoanYears, AnnualRate: e.cfg.LoanRatePct}
}

// Project runs the revenue, acquisition cost and optimization estimates.
func (e *Estimator) Project(m model.Metrics, insights []model.Insight) model.Projections {
	p := model.Projections{
		Revenue:      e.ProjectRevenue(m, e.cfg.HorizonMonths),
		Acquisition:  e.BreakevenAcquisitionCost(m),
		Optimization: e.SimulateOptimization(m, insights),
	}

	zap.L().Debug("estimate: projections computed",
		zap.Int("months", len(p.Revenue.Periods)),
		zap.Float64("total_revenue", p.Revenue.TotalRevenue),
		zap.Float64("max_monthly_increase", p.Optimization.MaxMonthlyIncrease),
	)

	return p
}

// ProjectRevenue projects members and revenue month by month. The current
// net growth rate decays geometrically by the configured deceleration. A
// non-positive months uses the configured horizon.
func (e *Estimator) ProjectRevenue(m model.Metrics, months int) model.RevenueProjection {
	if months <= 0 {
		months = e.cfg.HorizonMonths
	}

	active := float64(m.ActiveSubscriptions)
	var growth float64
	if active > 0 {
		growth = float64(m.NewMembers-m.LostMembers) / active
	}

	periods := make([]model.RevenuePeriod, 0, months)
	members := active
	var total float64
	for i := 0; i < months; i++ {
		rate := growth * math.Pow(e.cfg.Deceleration, float64(i))
		members *= 1 + rate
		revenue := round2(members * m.AveragePrice)
		total += revenue
		periods = append(periods, model.RevenuePeriod{
			Month:         i + 1,
			Members:       int(math.RoundToEven(members)),
			Revenue:       revenue,
			GrowthRatePct: round2(rate * 100),
		})
	}

	final := periods[len(periods)-1].Members
	var totalGrowth float64
	if active > 0 {
		totalGrowth = round2((float64(final)/active - 1) * 100)
	}

	return model.RevenueProjection{
		Periods:        periods,
		TotalRevenue:   round2(total),
		AverageRevenue: round2(total / float64(months)),
		FinalMembers:   final,
		TotalGrowthPct: totalGrowth,
	}
}

// BreakevenAcquisitionCost compares member lifetime value with what the gym
// currently spends to acquire a member.
func (e *Estimator) BreakevenAcquisitionCost(m model.Metrics) model.AcquisitionCost {
	ltv := m.MemberTenureMonths * m.AveragePrice * e.cfg.LTVMargin
	maxCAC := ltv / e.cfg.LTVCACDivisor

	var current float64
	if m.NewMembers > 0 {
		current = m.MarketingBudget / float64(m.NewMembers)
	}

	var ratio float64
	if ltv > 0 {
		ratio = round2(current / ltv)
	}

	healthy := true
	if current > 0 {
		healthy = current <= maxCAC
	}

	return model.AcquisitionCost{
		LTV:        round2(ltv),
		MaxCAC:     round2(maxCAC),
		CurrentCAC: round2(current),
		CACToLTV:   ratio,
		Healthy:    healthy,
	}
}

// SimulateOptimization applies each adoption fraction of the summed insight
// revenue and cost impacts to the current monthly P&L.
func (e *Estimator) SimulateOptimization(m model.Metrics, insights []model.Insight) model.OptimizationImpact {
	var revImpact, costImpact float64
	for _, in := range insights {
		if in.RevenueImpact != nil {
			revImpact += *in.RevenueImpact
		}
		if in.CostImpact != nil {
			costImpact += *in.CostImpact
		}
	}

	revenue := m.TotalRevenue()
	costs := m.TotalCosts()
	profit := revenue - costs

	scenarios := make([]model.OptimizationScenario, 0, len(e.cfg.AdoptionScenarios))
	for _, p := range e.cfg.AdoptionScenarios {
		r := revenue + revImpact*p
		c := costs + costImpact*p
		newProfit := r - c
		increase := newProfit - profit

		var pct float64
		if profit > 0 {
			pct = increase / profit * 100
		}

		scenarios = append(scenarios, model.OptimizationScenario{
			AdoptionPct:    int(math.Round(p * 100)),
			Revenue:        round2(r),
			Costs:          round2(c),
			Profit:         round2(newProfit),
			ProfitIncrease: round2(increase),
			IncreasePct:    round2(pct),
			AnnualProfit:   round2(newProfit * 12),
		})
	}

	maxMonthly := revImpact + math.Abs(costImpact)
	return model.OptimizationImpact{
		Current: model.OptimizationState{
			Revenue:      round2(revenue),
			Costs:        round2(costs),
			Profit:       round2(profit),
			AnnualProfit: round2(profit * 12),
		},
		Scenarios:          scenarios,
		MaxMonthlyIncrease: round2(maxMonthly),
		MaxAnnualIncrease:  round2(maxMonthly * 12),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
