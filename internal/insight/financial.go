package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func financialRules(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight
	d := s.Details.Financial

	if d.NetMarginPct < r.MarginMin {
		sev := model.SeverityHigh
		if d.NetMarginPct < r.MarginCritical {
			sev = model.SeverityCritical
		}
		out = append(out, model.Insight{
			Category: model.CategoryFinancial,
			Severity: sev,
			Title:    "Insufficient net margin",
			Description: fmt.Sprintf("Net margin of %.1f%% is below a healthy profitability range (15-20%%). "+
				"This limits the capacity to invest and exposes the business to financial risk.", d.NetMarginPct),
			Impact:        95,
			Difficulty:    60,
			RevenueImpact: model.Float(m.MonthlyRevenue * 0.10),
			CostImpact:    model.Float(-m.FixedCosts * 0.15),
			Steps: []string{
				"Review every cost line and isolate the 20% that drive 80% of spend",
				"Raise prices 5-10% on new memberships",
				"Add high-margin services (nutrition, personal training, recovery)",
				"Pool equipment and supplement purchases",
				"Renegotiate rent or find additional sublease tenants",
			},
			KPIs: []string{
				"Monthly net margin",
				"Cost to revenue ratio",
				"Average basket",
				"Revenue per add-on service",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if d.RevenuePerM2 < r.RevenuePerM2Min {
		potential := (r.RevenuePerM2Target - d.RevenuePerM2) * m.TotalAreaM2
		out = append(out, model.Insight{
			Category: model.CategoryFinancial,
			Severity: model.SeverityMedium,
			Title:    "Underused floor space",
			Description: fmt.Sprintf("Revenue of %.1f per m² is below potential (35-50 per m²). "+
				"Additional potential: %.0f per month.", d.RevenuePerM2, potential),
			Impact:        70,
			Difficulty:    50,
			RevenueImpact: model.Float(potential),
			Steps: []string{
				"Open extra slots during off-peak hours",
				"Offer open gym access to fill idle floor time",
				"Rent the space for weekend events",
				"Run premium specialty classes (mobility, yoga, weightlifting)",
				"Rework the layout to raise capacity",
			},
			KPIs: []string{
				"Revenue per m²",
				"Hourly occupancy",
				"Active slots",
				"Rental and event revenue",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if d.ChargeRatioPct > r.ChargeRatioMax {
		out = append(out, model.Insight{
			Category: model.CategoryFinancial,
			Severity: model.SeverityHigh,
			Title:    "High cost ratio",
			Description: fmt.Sprintf("Costs amount to %.1f%% of revenue (target: 75-80%%). "+
				"This sharply reduces profitability and room to maneuver.", d.ChargeRatioPct),
			Impact:     85,
			Difficulty: 65,
			CostImpact: model.Float(-m.MonthlyRevenue * 0.10),
			Steps: []string{
				"Audit every expense line",
				"Renegotiate supplier contracts (energy, insurance, equipment)",
				"Share purchasing with other gyms",
				"Match coach hours to actual attendance",
				"Automate admin work (billing, reminders)",
			},
			KPIs: []string{
				"Cost to revenue ratio",
				"Monthly savings achieved",
				"Costs by category",
				"Return on optimizations",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	autoDebitPct := float64(m.AutoDebitSubscriptions) / float64(m.ActiveSubscriptions) * 100
	if autoDebitPct < r.AutoDebitMinPct {
		out = append(out, model.Insight{
			Category: model.CategoryFinancial,
			Severity: model.SeverityMedium,
			Title:    "Revenue predictability can improve",
			Description: fmt.Sprintf("Only %.1f%% of memberships are on automatic debit. "+
				"Target 90%%+ to make revenue predictable and reduce churn.", autoDebitPct),
			Impact:        60,
			Difficulty:    30,
			RevenueImpact: model.Float(m.AveragePrice * (float64(m.ActiveSubscriptions) * 0.05)),
			Steps: []string{
				"Offer a 5% discount for automatic debit",
				"Simplify the direct-debit sign-up flow",
				"Explain the convenience of automatic payment",
				"Gradually convert card-paying members",
			},
			KPIs: []string{
				"Automatic debit rate",
				"Card to debit conversion rate",
				"Churn by payment type",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	return out
}
