package insight

import (
	"fmt"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

func equipmentRules(m model.Metrics, _ model.OverallScore, r config.RulesConfig) []model.Insight {
	var out []model.Insight

	if m.EquipmentAgeYears > r.EquipmentAgeMax {
		out = append(out, model.Insight{
			Category: model.CategoryEquipment,
			Severity: model.SeverityMedium,
			Title:    "Aging equipment",
			Description: fmt.Sprintf("Average equipment age: %.1f years. "+
				"Past 5 years, breakdowns increase and the gym looks dated.", m.EquipmentAgeYears),
			Impact:     55,
			Difficulty: 75,
			CostImpact: model.Float(20000),
			Steps: []string{
				"Plan a gradual renewal of 20% per year",
				"Start with the most used and visible equipment",
				"Negotiate supplier partnerships for visibility",
				"Consider recent second-hand equipment",
				"Improve preventive maintenance",
			},
			KPIs: []string{
				"Average equipment age",
				"Breakdowns per month",
				"Maintenance budget",
				"Equipment satisfaction (survey)",
			},
			Timeframe: model.TimeframeMediumTerm,
		})
	}

	perMember := m.EquipmentValue / float64(m.ActiveSubscriptions)
	if perMember < r.EquipmentPerMemberMin {
		out = append(out, model.Insight{
			Category: model.CategoryEquipment,
			Severity: model.SeverityLow,
			Title:    "Equipment per member is low",
			Description: fmt.Sprintf("Equipment value per member: %.0f (target: 600-800). "+
				"Further investment would improve the member experience.", perMember),
			Impact:     45,
			Difficulty: 60,
			CostImpact: model.Float(10000),
			Steps: []string{
				"Collect member feedback on missing equipment",
				"Invest in versatile, durable gear",
				"Prioritize equipment that enables new classes",
				"Refresh the overall look of the gym",
			},
			KPIs: []string{
				"Equipment value per member",
				"Use of new equipment",
				"Impact on satisfaction",
				"Return on the investment",
			},
			Timeframe: model.TimeframeMediumTerm,
		})
	}

	return out
}
