package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func satisfactionRules(m model.Metrics, s model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight
	churn := s.Details.Satisfaction.ChurnRatePct

	if churn > r.ChurnMax {
		sev := model.SeverityHigh
		if churn > r.ChurnCritical {
			sev = model.SeverityCritical
		}
		out = append(out, model.Insight{
			Category: model.CategorySatisfaction,
			Severity: sev,
			Title:    "Worrying churn rate",
			Description: fmt.Sprintf("Churn of %.1f%% per month (target: under 5%%). "+
				"At this pace %.0f%% of members leave each year. "+
				"Acquiring a member costs 5-10x more than keeping one.", churn, churn*12),
			Impact:        90,
			Difficulty:    70,
			RevenueImpact: model.Float(m.AveragePrice * (float64(m.ActiveSubscriptions) * 0.05) * 12),
			Steps: []string{
				"Hold exit interviews with every leaving member",
				"Build a structured 30-60-90 day onboarding",
				"Contact members whose attendance drops",
				"Host a monthly community event",
				"Offer personalized progression paths",
				"Reward referrals",
			},
			KPIs: []string{
				"Monthly churn rate",
				"Retention by cohort",
				"Net Promoter Score",
				"Categorized reasons for leaving",
				"Attendance per member",
			},
			Timeframe: model.TimeframeImmediate,
		})
	}

	if m.ReviewCount < r.ReviewCountMin || m.ReviewRating < r.ReviewRatingMin {
		out = append(out, model.Insight{
			Category: model.CategorySatisfaction,
			Severity: model.SeverityMedium,
			Title:    "Online reputation to build",
			Description: fmt.Sprintf("With %d reviews rated %.1f/5, online visibility and credibility can improve. "+
				"Target: 100+ reviews at 4.7+/5.", m.ReviewCount, m.ReviewRating),
			Impact:        60,
			Difficulty:    30,
			RevenueImpact: model.Float(m.AveragePrice * 3),
			Steps: []string{
				"Ask for a review after the first month",
				"Make reviewing easy with a QR code or direct link",
				"Reply quickly to every review",
				"Recognize satisfied members",
				"Fix issues raised in negative reviews",
			},
			KPIs: []string{
				"Review count",
				"Average rating",
				"Review response rate",
				"Visitor to member conversion",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	if m.AttendanceRate < r.AttendanceMin {
		out = append(out, model.Insight{
			Category: model.CategorySatisfaction,
			Severity: model.SeverityMedium,
			Title:    "Member engagement needs a boost",
			Description: fmt.Sprintf("Average attendance of %.1f%% signals weak engagement. "+
				"Disengaged members are more likely to leave. Target: 60-70%%.", m.AttendanceRate),
			Impact:     70,
			Difficulty: 55,
			Steps: []string{
				"Run monthly challenges with a visible leaderboard",
				"Track progression in an app or on a board",
				"Organize friendly in-house competitions",
				"Send personal nudges to inactive members",
				"Set up accountability groups",
				"Gamify the experience with badges and levels",
			},
			KPIs: []string{
				"Average attendance",
				"Visits per week distribution",
				"Challenge participation",
				"Attendance to retention correlation",
			},
			Timeframe: model.TimeframeShortTerm,
		})
	}

	return out
}
