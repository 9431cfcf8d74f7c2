package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func growthRules(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight
	d := s.Details.Growth

	if d.GrowthRatePct < r.GrowthMin {
		sev, title := model.SeverityMedium, "Insufficient growth"
		if d.GrowthRatePct < 0 {
			sev, title = model.SeverityHigh, "Worrying decline"
		}
		out = append(out, model.Insight{
			Category: model.CategoryMarketing,
			Severity: sev,
			Title:    title,
			Description: fmt.Sprintf("Monthly growth of %.1f%%. Target: 3-5%% per month for healthy growth. "+
				"At this pace: %.0f%% annual growth.", d.GrowthRatePct, d.GrowthRatePct*12),
			Impact:        85,
			Difficulty:    65,
			RevenueImpact: model.Float(m.AveragePrice * (float64(m.ActiveSubscriptions) * 0.05) * 12),
			CostImpact:    model.Float(m.MarketingBudget * 2),
			Steps: []string{
				"Raise the marketing budget to 5-7% of revenue",
				"Launch a referral program rewarding both sides",
				"Hold a monthly open day",
				"Partner with local businesses, schools and clubs",
				"Offer a free trial week",
				"Optimize the conversion funnel (website, social, landing pages)",
			},
			KPIs: []string{
				"Monthly growth rate",
				"Customer acquisition cost",
				"Visitor to trial to member conversion",
				"Marketing return per channel",
				"Member lifetime value",
			},
			Timeframe: model.TimeframeImmediate,
		})
	}

	if d.FollowerRatio < r.FollowerRatioMin || m.EngagementRate < r.EngagementMin {
		out = append(out, model.Insight{
			Category: model.CategoryMarketing,
			Severity: model.SeverityMedium,
			Title:    "Underdeveloped digital presence",
			Description: fmt.Sprintf("Follower to member ratio of %.1f:1 (target: 4-6:1) "+
				"and engagement of %.2f%% (target: above 2%%). "+
				"Digital is a major untapped growth lever.", d.FollowerRatio, m.EngagementRate*100),
			Impact:        65,
			Difficulty:    45,
			RevenueImpact: model.Float(m.AveragePrice * 5),
			CostImpact:    model.Float(500),
			Steps: []string{
				"Post varied content daily (workouts, transformations, tips, behind the scenes)",
				"Showcase member success stories",
				"Produce short dynamic videos",
				"Run digital challenges",
				"Work with local fitness influencers",
				"Use stories for daily interaction",
				"Invest in targeted social ads",
			},
			KPIs: []string{
				"Followers per platform",
				"Engagement rate",
				"Reach and impressions",
				"Conversions from social",
				"Digital cost per acquisition",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if d.ResidualCapacity < r.ResidualCapacityMin {
		out = append(out, model.Insight{
			Category: model.CategoryStrategic,
			Severity: model.SeverityHigh,
			Title:    "Close to maximum capacity",
			Description: fmt.Sprintf("Only %.0f spots of residual capacity. "+
				"Growth is capped by the current facility and needs strategic planning.", d.ResidualCapacity),
			Impact:     80,
			Difficulty: 85,
			CostImpact: model.Float(m.Rent * 1.5),
			Steps: []string{
				"Assess expansion within the current premises",
				"Optimize the schedule to use existing capacity",
				"Consider opening a second site",
				"Raise prices to slow growth and improve margin",
				"Start a committed waiting list",
				"Develop off-peak slots",
			},
			KPIs: []string{
				"Occupancy rate",
				"Waiting list",
				"Expansion feasibility",
				"Projected return of a new site",
				"Satisfaction under saturation",
			},
			Timeframe: model.TimeframeLongTerm,
		})
	}

	return out
}
