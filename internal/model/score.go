package model

// ScoreCategory names one of the five scored dimensions.
type ScoreCategory string

const (
	ScoreFinancialHealth       ScoreCategory = "financial_health"
	ScoreOperationalEfficiency ScoreCategory = "operational_efficiency"
	ScoreMemberSatisfaction    ScoreCategory = "member_satisfaction"
	ScoreGrowthPotential       ScoreCategory = "growth_potential"
	ScoreCompetitivePosition   ScoreCategory = "competitive_position"
)

// ScoreCategories lists the dimensions in reporting order.
var ScoreCategories = []ScoreCategory{
	ScoreFinancialHealth,
	ScoreOperationalEfficiency,
	ScoreMemberSatisfaction,
	ScoreGrowthPotential,
	ScoreCompetitivePosition,
}

// Valid reports whether c is a known score category.
func (c ScoreCategory) Valid() bool {
	switch c {
	case ScoreFinancialHealth, ScoreOperationalEfficiency, ScoreMemberSatisfaction,
		ScoreGrowthPotential, ScoreCompetitivePosition:
		return true
	}
	return false
}

// Label is the human name of the dimension.
func (c ScoreCategory) Label() string {
	switch c {
	case ScoreFinancialHealth:
		return "Financial health"
	case ScoreOperationalEfficiency:
		return "Operational efficiency"
	case ScoreMemberSatisfaction:
		return "Member satisfaction"
	case ScoreGrowthPotential:
		return "Growth potential"
	case ScoreCompetitivePosition:
		return "Competitive position"
	default:
		return string(c)
	}
}

// Grade is the letter grade attached to an overall score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Grades lists every grade from best to worst.
var Grades = []Grade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC, GradeD, GradeF}

// GradeFor maps a 0-100 score onto its grade. Lower bounds are inclusive.
func GradeFor(score float64) Grade {
	switch {
	case score >= 85:
		return GradeAPlus
	case score >= 75:
		return GradeA
	case score >= 65:
		return GradeBPlus
	case score >= 55:
		return GradeB
	case score >= 45:
		return GradeC
	case score >= 35:
		return GradeD
	default:
		return GradeF
	}
}

// Label is the human description of the grade.
func (g Grade) Label() string {
	switch g {
	case GradeAPlus:
		return "Excellence"
	case GradeA:
		return "Very good"
	case GradeBPlus:
		return "Good"
	case GradeB:
		return "Satisfactory"
	case GradeC:
		return "Average"
	case GradeD:
		return "Weak"
	case GradeF:
		return "Critical"
	default:
		return ""
	}
}

// Rank orders grades so that a better grade has a higher rank.
func (g Grade) Rank() int {
	switch g {
	case GradeAPlus:
		return 6
	case GradeA:
		return 5
	case GradeBPlus:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	case GradeD:
		return 1
	default:
		return 0
	}
}

// FinancialDetails holds the intermediate financial-health figures.
type FinancialDetails struct {
	NetResult         float64 `json:"net_result"`
	NetMarginPct      float64 `json:"net_margin_pct"`
	RevenuePerM2      float64 `json:"revenue_per_m2"`
	ChargeRatioPct    float64 `json:"charge_ratio_pct"`
	MarginScore       float64 `json:"margin_score"`
	RevenuePerM2Score float64 `json:"revenue_per_m2_score"`
	ChargeRatioScore  float64 `json:"charge_ratio_score"`
}

// Map flattens the details for generic consumers.
func (d FinancialDetails) Map() map[string]float64 {
	return map[string]float64{
		"net_result":           d.NetResult,
		"net_margin_pct":       d.NetMarginPct,
		"revenue_per_m2":       d.RevenuePerM2,
		"charge_ratio_pct":     d.ChargeRatioPct,
		"margin_score":         d.MarginScore,
		"revenue_per_m2_score": d.RevenuePerM2Score,
		"charge_ratio_score":   d.ChargeRatioScore,
	}
}

// OperationalDetails holds the intermediate operational-efficiency figures.
type OperationalDetails struct {
	UtilizationPct    float64 `json:"utilization_pct"`
	MembersPerCoach   float64 `json:"members_per_coach"`
	ClassesPerHour    float64 `json:"classes_per_hour"`
	UtilizationScore  float64 `json:"utilization_score"`
	ProductivityScore float64 `json:"productivity_score"`
	PlanningScore     float64 `json:"planning_score"`
	FillScore         float64 `json:"fill_score"`
}

// Map flattens the details for generic consumers.
func (d OperationalDetails) Map() map[string]float64 {
	return map[string]float64{
		"utilization_pct":    d.UtilizationPct,
		"members_per_coach":  d.MembersPerCoach,
		"classes_per_hour":   d.ClassesPerHour,
		"utilization_score":  d.UtilizationScore,
		"productivity_score": d.ProductivityScore,
		"planning_score":     d.PlanningScore,
		"fill_score":         d.FillScore,
	}
}

// SatisfactionDetails holds the intermediate member-satisfaction figures.
type SatisfactionDetails struct {
	ChurnRatePct    float64 `json:"churn_rate_pct"`
	RetentionPct    float64 `json:"retention_pct"`
	RetentionScore  float64 `json:"retention_score"`
	TenureScore     float64 `json:"tenure_score"`
	AttendanceScore float64 `json:"attendance_score"`
	RatingScore     float64 `json:"rating_score"`
	ReviewBonus     float64 `json:"review_bonus"`
}

// Map flattens the details for generic consumers.
func (d SatisfactionDetails) Map() map[string]float64 {
	return map[string]float64{
		"churn_rate_pct":   d.ChurnRatePct,
		"retention_pct":    d.RetentionPct,
		"retention_score":  d.RetentionScore,
		"tenure_score":     d.TenureScore,
		"attendance_score": d.AttendanceScore,
		"rating_score":     d.RatingScore,
		"review_bonus":     d.ReviewBonus,
	}
}

// GrowthDetails holds the intermediate growth-potential figures.
type GrowthDetails struct {
	GrowthRatePct       float64 `json:"growth_rate_pct"`
	ResidualCapacity    float64 `json:"residual_capacity"`
	ResidualCapacityPct float64 `json:"residual_capacity_pct"`
	FollowerRatio       float64 `json:"follower_ratio"`
	GrowthScore         float64 `json:"growth_score"`
	CapacityScore       float64 `json:"capacity_score"`
	DigitalScore        float64 `json:"digital_score"`
	EngagementScore     float64 `json:"engagement_score"`
}

// Map flattens the details for generic consumers.
func (d GrowthDetails) Map() map[string]float64 {
	return map[string]float64{
		"growth_rate_pct":       d.GrowthRatePct,
		"residual_capacity":     d.ResidualCapacity,
		"residual_capacity_pct": d.ResidualCapacityPct,
		"follower_ratio":        d.FollowerRatio,
		"growth_score":          d.GrowthScore,
		"capacity_score":        d.CapacityScore,
		"digital_score":         d.DigitalScore,
		"engagement_score":      d.EngagementScore,
	}
}

// CompetitiveDetails holds the intermediate competitive-position figures.
type CompetitiveDetails struct {
	PriceRatioPct     float64        `json:"price_ratio_pct"`
	Position          MarketPosition `json:"position"`
	CompetitorDensity float64        `json:"competitor_density"`
	MarketSharePct    float64        `json:"market_share_pct"`
	PositionScore     float64        `json:"position_score"`
	DensityScore      float64        `json:"density_score"`
	MarketShareScore  float64        `json:"market_share_score"`
}

// Map flattens the numeric details for generic consumers. Position is
// reported through PositionScore.
func (d CompetitiveDetails) Map() map[string]float64 {
	return map[string]float64{
		"price_ratio_pct":    d.PriceRatioPct,
		"competitor_density": d.CompetitorDensity,
		"market_share_pct":   d.MarketSharePct,
		"position_score":     d.PositionScore,
		"density_score":      d.DensityScore,
		"market_share_score": d.MarketShareScore,
	}
}

// ScoreDetails carries the typed intermediate figures of all five dimensions.
type ScoreDetails struct {
	Financial    FinancialDetails    `json:"financial"`
	Operational  OperationalDetails  `json:"operational"`
	Satisfaction SatisfactionDetails `json:"satisfaction"`
	Growth       GrowthDetails       `json:"growth"`
	Competitive  CompetitiveDetails  `json:"competitive"`
}

// CategoryScore is one dimension of the overall score.
type CategoryScore struct {
	Category ScoreCategory      `json:"category"`
	Score    float64            `json:"score"`
	Weight   float64            `json:"weight"`
	Details  map[string]float64 `json:"details"`
}

// OverallScore is the weighted combination of the five category scores.
type OverallScore struct {
	Score      float64         `json:"overall_score"`
	Grade      Grade           `json:"grade"`
	GradeLabel string          `json:"grade_label"`
	Categories []CategoryScore `json:"category_scores"`
	Details    ScoreDetails    `json:"details"`
}

// Category returns the score of the given dimension.
func (o OverallScore) Category(c ScoreCategory) (CategoryScore, bool) {
	for _, cs := range o.Categories {
		if cs.Category == c {
			return cs, true
		}
	}
	return CategoryScore{}, false
}
