package model

// Category classifies an insight by business area.
type Category string

const (
	CategoryFinancial    Category = "financial"
	CategoryMarketing    Category = "marketing"
	CategoryOperational  Category = "operational"
	CategoryHuman        Category = "human"
	CategoryEquipment    Category = "equipment"
	CategorySatisfaction Category = "satisfaction"
	CategoryStrategic    Category = "strategic"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryMarketing, CategoryOperational, CategoryHuman,
		CategoryEquipment, CategorySatisfaction, CategoryStrategic:
		return true
	}
	return false
}

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityHigh        Severity = "high"
	SeverityMedium      Severity = "medium"
	SeverityLow         Severity = "low"
	SeverityOpportunity Severity = "opportunity"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityOpportunity:
		return true
	}
	return false
}

// Weight is the severity contribution to an insight's priority.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 1.0
	case SeverityHigh:
		return 0.8
	case SeverityMedium:
		return 0.6
	case SeverityLow:
		return 0.4
	case SeverityOpportunity:
		return 0.7
	default:
		return 0
	}
}

// Timeframe is the expected horizon for acting on an insight.
type Timeframe string

const (
	TimeframeImmediate  Timeframe = "immediate"
	TimeframeShortTerm  Timeframe = "short_term"
	TimeframeMediumTerm Timeframe = "medium_term"
	TimeframeLongTerm   Timeframe = "long_term"
)

// Valid reports whether t is a known timeframe.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeImmediate, TimeframeShortTerm, TimeframeMediumTerm, TimeframeLongTerm:
		return true
	}
	return false
}

// Insight is a single finding with its recommended actions.
type Insight struct {
	Category      Category  `json:"category"`
	Severity      Severity  `json:"severity"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Impact        float64   `json:"impact_score"`
	Difficulty    float64   `json:"implementation_difficulty"`
	RevenueImpact *float64  `json:"estimated_revenue_impact"`
	CostImpact    *float64  `json:"estimated_cost_impact"`
	Priority      float64   `json:"priority_score"`
	Steps         []string  `json:"actionable_steps"`
	KPIs          []string  `json:"kpis_to_track"`
	Timeframe     Timeframe `json:"timeframe"`
}

// Float returns a pointer to v, for optional impact figures.
func Float(v float64) *float64 {
	return &v
}
