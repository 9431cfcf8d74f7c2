package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func competitiveRules(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight
	ratio := s.Details.Competitive.PriceRatioPct

	switch {
	case ratio < r.PriceRatioLow:
		gain := m.MonthlyRevenue * 0.12
		out = append(out, model.Insight{
			Category: model.CategoryStrategic,
			Severity: model.SeverityMedium,
			Title:    "Underpriced memberships",
			Description: fmt.Sprintf("Prices are %.0f%% below competitors. "+
				"A 10-15%% increase is possible without losing competitiveness. "+
				"Potential impact: +%.0f per month.", 100-ratio, gain),
			Impact:        75,
			Difficulty:    40,
			RevenueImpact: model.Float(gain),
			Steps: []string{
				"Raise prices 10% on all new memberships",
				"Keep existing members on current prices",
				"Strengthen the value proposition (services, coaching, equipment)",
				"Communicate quality and results to support the increase",
				"Create premium plans with extra services",
			},
			KPIs: []string{
				"New member average price",
				"Conversion after the increase",
				"Churn on new vs old pricing",
				"Total monthly revenue",
			},
			Timeframe: model.TimeframeImmediate,
		})
	case ratio > r.PriceRatioHigh:
		out = append(out, model.Insight{
			Category: model.CategoryStrategic,
			Severity: model.SeverityMedium,
			Title:    "Premium pricing must be justified",
			Description: fmt.Sprintf("Prices are %.0f%% above competitors. "+
				"Make sure the value proposition supports the premium.", ratio-100),
			Impact:     60,
			Difficulty: 50,
			Steps: []string{
				"Audit the value proposition against competitors",
				"Reinforce differentiators (coaching, equipment, community)",
				"Promote unique advantages",
				"Collect and showcase testimonials and results",
				"Watch conversion and adjust if needed",
			},
			KPIs: []string{
				"Conversion rate",
				"Objections and refusal reasons",
				"NPS vs competitors",
				"Comparative churn",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if m.Competitors > r.CompetitorsMax {
		out = append(out, model.Insight{
			Category: model.CategoryStrategic,
			Severity: model.SeverityMedium,
			Title:    "Saturated market",
			Description: fmt.Sprintf("With %d direct competitors, differentiation is essential. "+
				"Unique competitive advantages need to be built.", m.Competitors),
			Impact:     70,
			Difficulty: 70,
			Steps: []string{
				"Analyze each competitor's offer in detail",
				"Find underserved niches (seniors, beginners, prenatal)",
				"Build a strong and distinctive brand",
				"Create exclusive programs that are hard to copy",
				"Invest in community and member experience",
				"Consider strategic partnerships",
			},
			KPIs: []string{
				"Estimated market share",
				"Perceived differentiators (survey)",
				"Conversion vs competitors",
				"Why new members chose the gym",
			},
			Timeframe: model.TimeframeMediumTerm,
		})
	}

	return out
}
