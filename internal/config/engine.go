package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CategoryWeights holds the contribution of each dimension to the overall
// score. They must sum to 1.0.
type CategoryWeights struct {
	FinancialHealth       float64 `yaml:"financial_health" mapstructure:"financial_health"`
	OperationalEfficiency float64 `yaml:"operational_efficiency" mapstructure:"operational_efficiency"`
	MemberSatisfaction    float64 `yaml:"member_satisfaction" mapstructure:"member_satisfaction"`
	GrowthPotential       float64 `yaml:"growth_potential" mapstructure:"growth_potential"`
	CompetitivePosition   float64 `yaml:"competitive_position" mapstructure:"competitive_position"`
}

// Sum returns the total of all weights.
func (w CategoryWeights) Sum() float64 {
	return w.FinancialHealth + w.OperationalEfficiency + w.MemberSatisfaction +
		w.GrowthPotential + w.CompetitivePosition
}

// ScoringConfig configures the performance scorer.
type ScoringConfig struct {
	Weights CategoryWeights `yaml:"weights" mapstructure:"weights"`
}

// DefaultScoringConfig returns the standard category weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: CategoryWeights{
			FinancialHealth:       0.30,
			OperationalEfficiency: 0.20,
			MemberSatisfaction:    0.20,
			GrowthPotential:       0.15,
			CompetitivePosition:   0.15,
		},
	}
}

// ProjectionConfig configures the prediction engine.
type ProjectionConfig struct {
	HorizonMonths     int       `yaml:"horizon_months" mapstructure:"horizon_months"`
	Deceleration      float64   `yaml:"deceleration" mapstructure:"deceleration"`
	LTVMargin         float64   `yaml:"ltv_margin" mapstructure:"ltv_margin"`
	LTVCACDivisor     float64   `yaml:"ltv_cac_divisor" mapstructure:"ltv_cac_divisor"`
	LoanYears         int       `yaml:"loan_years" mapstructure:"loan_years"`
	LoanRatePct       float64   `yaml:"loan_rate" mapstructure:"loan_rate"`
	AdoptionScenarios []float64 `yaml:"adoption_scenarios" mapstructure:"adoption_scenarios"`
}

// DefaultProjectionConfig returns the standard projection parameters.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		HorizonMonths:     12,
		Deceleration:      0.95,
		LTVMargin:         0.60,
		LTVCACDivisor:     3,
		LoanYears:         7,
		LoanRatePct:       4.0,
		AdoptionScenarios: []float64{0.3, 0.5, 0.7, 1.0},
	}
}

// RulesConfig holds the trigger thresholds of the insight rules. Percentages
// are 0-100 except EngagementMin, which is a fraction.
type RulesConfig struct {
	MarginMin             float64 `yaml:"margin_min"`
	MarginCritical        float64 `yaml:"margin_critical"`
	RevenuePerM2Min       float64 `yaml:"revenue_per_m2_min"`
	RevenuePerM2Target    float64 `yaml:"revenue_per_m2_target"`
	ChargeRatioMax        float64 `yaml:"charge_ratio_max"`
	AutoDebitMinPct       float64 `yaml:"auto_debit_min_pct"`
	ClassFillMin          float64 `yaml:"class_fill_min"`
	MembersPerCoachMax    float64 `yaml:"members_per_coach_max"`
	MembersPerCoachMin    float64 `yaml:"members_per_coach_min"`
	ClassesPerWeekMin     int     `yaml:"classes_per_week_min"`
	ChurnMax              float64 `yaml:"churn_max"`
	ChurnCritical         float64 `yaml:"churn_critical"`
	ReviewCountMin        int     `yaml:"review_count_min"`
	ReviewRatingMin       float64 `yaml:"review_rating_min"`
	AttendanceMin         float64 `yaml:"attendance_min"`
	GrowthMin             float64 `yaml:"growth_min"`
	FollowerRatioMin      float64 `yaml:"follower_ratio_min"`
	EngagementMin         float64 `yaml:"engagement_min"`
	ResidualCapacityMin   float64 `yaml:"residual_capacity_min"`
	PriceRatioLow         float64 `yaml:"price_ratio_low"`
	PriceRatioHigh        float64 `yaml:"price_ratio_high"`
	CompetitorsMax        int     `yaml:"competitors_max"`
	EquipmentAgeMax       float64 `yaml:"equipment_age_max"`
	EquipmentPerMemberMin float64 `yaml:"equipment_per_member_min"`
}

// DefaultRulesConfig returns the standard insight thresholds.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		MarginMin:             10,
		MarginCritical:        5,
		RevenuePerM2Min:       30,
		RevenuePerM2Target:    40,
		ChargeRatioMax:        85,
		AutoDebitMinPct:       85,
		ClassFillMin:          75,
		MembersPerCoachMax:    35,
		MembersPerCoachMin:    20,
		ClassesPerWeekMin:     30,
		ChurnMax:              8,
		ChurnCritical:         12,
		ReviewCountMin:        50,
		ReviewRatingMin:       4.5,
		AttendanceMin:         50,
		GrowthMin:             2,
		FollowerRatioMin:      3,
		EngagementMin:         0.02,
		ResidualCapacityMin:   10,
		PriceRatioLow:         85,
		PriceRatioHigh:        115,
		CompetitorsMax:        3,
		EquipmentAgeMax:       5,
		EquipmentPerMemberMin: 500,
	}
}

// LoadRules reads insight thresholds from a YAML file. Keys absent from the
// file keep their default value.
func LoadRules(path string) (RulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RulesConfig{}, eris.Wrapf(err, "config: read rules %s", path)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML thresholds on top of the defaults. The document may
// nest them under a top-level "rules" key.
func ParseRules(data []byte) (RulesConfig, error) {
	cfg := DefaultRulesConfig()

	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return RulesConfig{}, eris.Wrap(err, "config: parse rules")
	}
	if node, ok := probe["rules"]; ok {
		if err := node.Decode(&cfg); err != nil {
			return RulesConfig{}, eris.Wrap(err, "config: decode rules")
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RulesConfig{}, eris.Wrap(err, "config: decode rules")
	}
	return cfg, nil
}
