package model

// RiskLevel grades the debt-service risk of an acquisition.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Acquisition recommendations.
const (
	RecommendationNotRecommended = "NOT RECOMMENDED - negative cash flow after debt service"
	RecommendationRecommended    = "RECOMMENDED - solid profitability and low risk"
	RecommendationAcceptable     = "ACCEPTABLE - positive cash flow, moderate risk"
	RecommendationRisky          = "RISKY - thin margin, requires close monitoring"
)

// RevenuePeriod is one month of a revenue projection.
type RevenuePeriod struct {
	Month         int     `json:"month"`
	Members       int     `json:"members"`
	Revenue       float64 `json:"revenue"`
	GrowthRatePct float64 `json:"growth_rate_pct"`
}

// RevenueProjection projects membership and revenue month by month.
type RevenueProjection struct {
	Periods        []RevenuePeriod `json:"monthly_projections"`
	TotalRevenue   float64         `json:"total_projected_revenue"`
	AverageRevenue float64         `json:"average_monthly_revenue"`
	FinalMembers   int             `json:"final_member_count"`
	TotalGrowthPct float64         `json:"total_growth_pct"`
}

// AcquisitionCost compares member lifetime value to acquisition spend.
type AcquisitionCost struct {
	LTV        float64 `json:"ltv"`
	MaxCAC     float64 `json:"max_cac"`
	CurrentCAC float64 `json:"current_cac"`
	CACToLTV   float64 `json:"cac_ltv_ratio"`
	Healthy    bool    `json:"is_healthy"`
}

// OptimizationState is the monthly P&L under one adoption scenario.
type OptimizationState struct {
	Revenue      float64 `json:"revenue"`
	Costs        float64 `json:"costs"`
	Profit       float64 `json:"profit"`
	AnnualProfit float64 `json:"annual_profit"`
}

// OptimizationScenario applies a fraction of every insight's impact.
type OptimizationScenario struct {
	AdoptionPct    int     `json:"adoption_pct"`
	Revenue        float64 `json:"revenue"`
	Costs          float64 `json:"costs"`
	Profit         float64 `json:"profit"`
	ProfitIncrease float64 `json:"profit_increase"`
	IncreasePct    float64 `json:"profit_increase_pct"`
	AnnualProfit   float64 `json:"annual_profit"`
}

// OptimizationImpact simulates the effect of acting on the insights.
type OptimizationImpact struct {
	Current            OptimizationState      `json:"current_state"`
	Scenarios          []OptimizationScenario `json:"scenarios"`
	MaxMonthlyIncrease float64                `json:"max_potential_monthly_increase"`
	MaxAnnualIncrease  float64                `json:"max_potential_annual_increase"`
}

// Projections groups every forward-looking estimate of an analysis.
type Projections struct {
	Revenue      RevenueProjection  `json:"revenue_projection"`
	Acquisition  AcquisitionCost    `json:"acquisition_cost"`
	Optimization OptimizationImpact `json:"optimization_impact"`
}

// LoanTerms describes the financing of an acquisition.
type LoanTerms struct {
	Years      int     `json:"years"`
	AnnualRate float64 `json:"annual_rate_pct"`
}

// AcquisitionViability tests whether the business can service acquisition
// debt out of its current profit.
type AcquisitionViability struct {
	Price           float64   `json:"purchase_price"`
	TermYears       int       `json:"term_years"`
	AnnualRatePct   float64   `json:"annual_rate_pct"`
	MonthlyPayment  float64   `json:"monthly_payment"`
	TotalPaid       float64   `json:"total_paid"`
	TotalInterest   float64   `json:"total_interest"`
	MonthlyProfit   float64   `json:"current_monthly_profit"`
	AnnualProfit    float64   `json:"current_annual_profit"`
	MonthlyCashFlow float64   `json:"monthly_cash_flow"`
	AnnualCashFlow  float64   `json:"annual_cash_flow"`
	PaybackYears    *float64  `json:"payback_years"`
	Viable          bool      `json:"is_viable"`
	Risk            RiskLevel `json:"risk_level"`
	Recommendation  string    `json:"recommendation"`
}
