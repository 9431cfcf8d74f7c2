package scorer

import (
	"math"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Score computes the five category scores of m and their weighted overall
// score. Category scores and the overall score are rounded to 2 decimals;
// the overall score is the weighted sum of the unrounded category scores.
func Score(m model.Metrics, cfg config.ScoringConfig) model.OverallScore {
	fin, finD := Financial(m)
	ops, opsD := Operational(m)
	sat, satD := Satisfaction(m)
	gro, groD := Growth(m)
	cmp, cmpD := Competitive(m)

	raw := []struct {
		cat     model.ScoreCategory
		score   float64
		details map[string]float64
	}{
		{model.ScoreFinancialHealth, fin, finD.Map()},
		{model.ScoreOperationalEfficiency, ops, opsD.Map()},
		{model.ScoreMemberSatisfaction, sat, satD.Map()},
		{model.ScoreGrowthPotential, gro, groD.Map()},
		{model.ScoreCompetitivePosition, cmp, cmpD.Map()},
	}

	var total float64
	categories := make([]model.CategoryScore, 0, len(raw))
	for _, r := range raw {
		w := weightFor(cfg, r.cat)
		total += r.score * w
		categories = append(categories, model.CategoryScore{
			Category: r.cat,
			Score:    round2(r.score),
			Weight:   w,
			Details:  r.details,
		})
	}

	overall := round2(total)
	grade := model.GradeFor(overall)
	return model.OverallScore{
		Score:      overall,
		Grade:      grade,
		GradeLabel: grade.Label(),
		Categories: categories,
		Details: model.ScoreDetails{
			Financial:    finD,
			Operational:  opsD,
			Satisfaction: satD,
			Growth:       groD,
			Competitive:  cmpD,
		},
	}
}

// Financial scores profitability, space productivity and cost structure.
func Financial(m model.Metrics) (float64, model.FinancialDetails) {
	revenue := m.TotalRevenue()
	costs := m.TotalCosts()
	net := revenue - costs

	var margin float64
	if revenue > 0 {
		margin = net / revenue * 100
	}
	perM2 := safeDiv(m.MonthlyRevenue, m.TotalAreaM2, 0)
	chargeRatio := 100.0
	if revenue > 0 {
		chargeRatio = costs / revenue * 100
	}

	// -20% margin maps to 0, +20% to 100.
	marginScore := clamp((margin + 20) * 2.5)
	perM2Score := clamp(perM2 / 50 * 100)
	chargeScore := clamp(100 - chargeRatio)

	score := marginScore*0.4 + perM2Score*0.3 + chargeScore*0.3
	return clamp(score), model.FinancialDetails{
		NetResult:         net,
		NetMarginPct:      margin,
		RevenuePerM2:      perM2,
		ChargeRatioPct:    chargeRatio,
		MarginScore:       marginScore,
		RevenuePerM2Score: perM2Score,
		ChargeRatioScore:  chargeScore,
	}
}

// Operational scores capacity use, coach productivity and scheduling.
func Operational(m model.Metrics) (float64, model.OperationalDetails) {
	active := float64(m.ActiveSubscriptions)
	present := active * m.AttendanceRate / 100
	utilization := safeDiv(present, float64(m.MaxCapacity), 0) * 100
	perCoach := safeDiv(active, float64(m.Coaches), 0)
	perHour := safeDiv(float64(m.ClassesPerWeek), m.OpeningHoursPerWeek, 0)

	// 80% utilization, 30 members per coach and 0.5 classes per hour are
	// the full-mark benchmarks.
	utilScore := math.Min(100, utilization*1.25)
	prodScore := math.Min(100, perCoach/30*100)
	planScore := math.Min(100, perHour/0.5*100)
	fillScore := m.ClassFillRate

	score := utilScore*0.25 + prodScore*0.25 + planScore*0.20 + fillScore*0.30
	return clamp(score), model.OperationalDetails{
		UtilizationPct:    utilization,
		MembersPerCoach:   perCoach,
		ClassesPerHour:    perHour,
		UtilizationScore:  utilScore,
		ProductivityScore: prodScore,
		PlanningScore:     planScore,
		FillScore:         fillScore,
	}
}

// Satisfaction scores retention, tenure, attendance and online reputation.
func Satisfaction(m model.Metrics) (float64, model.SatisfactionDetails) {
	churn := safeDiv(float64(m.LostMembers), float64(m.ActiveSubscriptions), 0) * 100
	retention := 100 - churn

	retentionScore := math.Min(100, retention*1.1)
	tenureScore := math.Min(100, m.MemberTenureMonths/24*100)
	attendanceScore := m.AttendanceRate
	ratingScore := m.ReviewRating / 5 * 100
	reviewBonus := math.Min(20, float64(m.ReviewCount)/50*20)

	score := (retentionScore*0.30 +
		tenureScore*0.20 +
		attendanceScore*0.20 +
		ratingScore*0.30 +
		reviewBonus*0.1) * 0.95
	return clamp(score), model.SatisfactionDetails{
		ChurnRatePct:    churn,
		RetentionPct:    retention,
		RetentionScore:  retentionScore,
		TenureScore:     tenureScore,
		AttendanceScore: attendanceScore,
		RatingScore:     ratingScore,
		ReviewBonus:     reviewBonus,
	}
}

// Growth scores net member growth, spare capacity and digital reach.
func Growth(m model.Metrics) (float64, model.GrowthDetails) {
	active := float64(m.ActiveSubscriptions)
	growth := safeDiv(float64(m.NewMembers-m.LostMembers), active, 0) * 100
	residual := float64(m.MaxCapacity) - active*m.AttendanceRate/100
	residualPct := safeDiv(residual, float64(m.MaxCapacity), 0) * 100
	followers := safeDiv(float64(m.SocialFollowers), active, 0)

	growthScore := math.Min(100, (growth+5)*10)
	capacityScore := math.Min(100, residualPct*2.5)
	digitalScore := math.Min(100, followers*20)
	engagementScore := math.Min(100, m.EngagementRate*200)

	score := growthScore*0.35 + capacityScore*0.25 + digitalScore*0.20 + engagementScore*0.20
	return clamp(score), model.GrowthDetails{
		GrowthRatePct:       growth,
		ResidualCapacity:    residual,
		ResidualCapacityPct: residualPct,
		FollowerRatio:       followers,
		GrowthScore:         growthScore,
		CapacityScore:       capacityScore,
		DigitalScore:        digitalScore,
		EngagementScore:     engagementScore,
	}
}

// Competitive scores pricing, declared position and market crowding.
func Competitive(m model.Metrics) (float64, model.CompetitiveDetails) {
	active := float64(m.ActiveSubscriptions)
	priceRatio := 100.0
	if m.CompetitorPrice > 0 {
		priceRatio = m.AveragePrice / m.CompetitorPrice * 100
	}

	pos := m.Position()
	posScore := positionScore(pos)

	// Competitors per 50 members.
	density := safeDiv(float64(m.Competitors), active/50, 0)
	densityScore := math.Max(0, 100-density*20)

	marketTotal := active * float64(m.Competitors+1)
	share := safeDiv(active, marketTotal, 0) * 100
	shareScore := share * 5

	score := posScore*0.40 + densityScore*0.30 + shareScore*0.30
	return clamp(score), model.CompetitiveDetails{
		PriceRatioPct:     priceRatio,
		Position:          pos,
		CompetitorDensity: density,
		MarketSharePct:    share,
		PositionScore:     posScore,
		DensityScore:      densityScore,
		MarketShareScore:  shareScore,
	}
}

func positionScore(p model.MarketPosition) float64 {
	switch p {
	case model.PositionLeader:
		return 100
	case model.PositionChallenger:
		return 75
	case model.PositionFollower, model.PositionUnknown:
		return 50
	default:
		return 50
	}
}

// safeDiv returns num/den, or fallback when den is not positive.
func safeDiv(num, den, fallback float64) float64 {
	if den <= 0 {
		return fallback
	}
	return num / den
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
