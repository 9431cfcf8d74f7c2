package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func operationalRules(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight
	perCoach := s.Details.Operational.MembersPerCoach

	if m.ClassFillRate < r.ClassFillMin {
		out = append(out, model.Insight{
			Category: model.CategoryOperational,
			Severity: model.SeverityMedium,
			Title:    "Class fill rate below target",
			Description: fmt.Sprintf("An average fill rate of %.1f%% leaves capacity unused. "+
				"Target: 80-85%% for a good balance.", m.ClassFillRate),
			Impact:     65,
			Difficulty: 45,
			Steps: []string{
				"Find underperforming slots by day, hour and coach",
				"Adjust the schedule from booking data",
				"Test different class formats at off-peak times",
				"Promote slots with open spots",
				"Require bookings to forecast attendance",
			},
			KPIs: []string{
				"Fill rate per slot",
				"Fill rate per coach",
				"Show-up rate after booking",
				"Weekly fill trend",
			},
			Timeframe: model.TimeframeImmediate,
		})
	}

	switch {
	case perCoach > r.MembersPerCoachMax:
		out = append(out, model.Insight{
			Category: model.CategoryOperational,
			Severity: model.SeverityHigh,
			Title:    "Too many members per coach",
			Description: fmt.Sprintf("With %.1f members per coach, coaching quality is at risk. "+
				"Target: 25-30 members per coach.", perCoach),
			Impact:     75,
			Difficulty: 70,
			CostImpact: model.Float(m.Payroll * 0.20),
			Steps: []string{
				"Hire an additional coach, part-time at first",
				"Train an experienced member as a coach",
				"Rebalance slots to spread the load",
				"Launch premium small-group classes (6-8 people)",
			},
			KPIs: []string{
				"Members per coach",
				"Member satisfaction survey",
				"Retention rate",
				"Injuries and incidents",
			},
			Timeframe: model.TimeframeMediumTerm,
		})
	case perCoach < r.MembersPerCoachMin:
		out = append(out, model.Insight{
			Category: model.CategoryOperational,
			Severity: model.SeverityMedium,
			Title:    "Coaches are underused",
			Description: fmt.Sprintf("With %.1f members per coach, coaching capacity is underused. "+
				"There is room to cut costs or grow the offer.", perCoach),
			Impact:        55,
			Difficulty:    50,
			RevenueImpact: model.Float(m.AveragePrice * 10),
			CostImpact:    model.Float(-m.Payroll * 0.10),
			Steps: []string{
				"Run an aggressive acquisition campaign",
				"Sell personal coaching",
				"Develop paid workshops and seminars",
				"Trim off-peak hours from the schedule",
				"Temporarily move one coach to part-time",
			},
			KPIs: []string{
				"Members per coach",
				"Coach occupancy",
				"Revenue per coach",
				"New sign-ups",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if m.ClassesPerWeek < r.ClassesPerWeekMin {
		out = append(out, model.Insight{
			Category: model.CategoryOperational,
			Severity: model.SeverityLow,
			Title:    "Schedule density can improve",
			Description: fmt.Sprintf("At %d classes per week there is room to grow. "+
				"Benchmark: 35-45 classes per week for an active box.", m.ClassesPerWeek),
			Impact:        50,
			Difficulty:    40,
			RevenueImpact: model.Float(m.AveragePrice * 5),
			Steps: []string{
				"Measure unmet demand by hour",
				"Add early morning and late evening slots",
				"Test weekend slots",
				"Offer short 30-45 minute formats",
				"Create specialty classes (beginners, technique, competition)",
			},
			KPIs: []string{
				"Classes per week",
				"Fill rate by time band",
				"Additional revenue",
				"Member satisfaction with slot variety",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	return out
}
