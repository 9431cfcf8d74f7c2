package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput is returned when a metrics record cannot be analyzed.
var ErrInvalidInput = eris.New("invalid input")

// MarketPosition is the self-declared competitive position of a gym.
type MarketPosition string

const (
	PositionLeader     MarketPosition = "leader"
	PositionChallenger MarketPosition = "challenger"
	PositionFollower   MarketPosition = "follower"
	PositionUnknown    MarketPosition = "unknown"
)

// ParsePosition maps a free-form position to a MarketPosition. Matching is
// case-insensitive; "suiveur" is accepted for follower. Anything else is
// PositionUnknown.
func ParsePosition(s string) MarketPosition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leader":
		return PositionLeader
	case "challenger":
		return PositionChallenger
	case "follower", "suiveur":
		return PositionFollower
	default:
		return PositionUnknown
	}
}

// Valid reports whether p is one of the known positions.
func (p MarketPosition) Valid() bool {
	switch p {
	case PositionLeader, PositionChallenger, PositionFollower, PositionUnknown:
		return true
	}
	return false
}

// Metrics is a monthly snapshot of a gym's operating figures.
type Metrics struct {
	// Financial (monthly, currency units)
	MonthlyRevenue float64 `json:"monthly_revenue" yaml:"monthly_revenue"`
	FixedCosts     float64 `json:"fixed_costs" yaml:"fixed_costs"`
	VariableCosts  float64 `json:"variable_costs" yaml:"variable_costs"`
	Rent           float64 `json:"rent" yaml:"rent"`
	SubleaseIncome float64 `json:"sublease_income" yaml:"sublease_income"`
	Payroll        float64 `json:"payroll" yaml:"payroll"`

	// Subscriptions
	ActiveSubscriptions    int     `json:"active_subscriptions" yaml:"active_subscriptions"`
	AutoDebitSubscriptions int     `json:"auto_debit_subscriptions" yaml:"auto_debit_subscriptions"`
	CardSubscriptions      int     `json:"card_subscriptions" yaml:"card_subscriptions"`
	AveragePrice           float64 `json:"average_price" yaml:"average_price"`
	StickerPrice           float64 `json:"sticker_price" yaml:"sticker_price"`

	// Membership flow
	NewMembers         int     `json:"new_members" yaml:"new_members"`
	LostMembers        int     `json:"lost_members" yaml:"lost_members"`
	AttendanceRate     float64 `json:"attendance_rate" yaml:"attendance_rate"` // 0-100
	MemberTenureMonths float64 `json:"member_tenure_months" yaml:"member_tenure_months"`

	// Infrastructure
	TotalAreaM2       float64 `json:"total_area_m2" yaml:"total_area_m2"`
	TrainingAreaM2    float64 `json:"training_area_m2" yaml:"training_area_m2"`
	EquipmentValue    float64 `json:"equipment_value" yaml:"equipment_value"`
	EquipmentAgeYears float64 `json:"equipment_age_years" yaml:"equipment_age_years"`
	MaxCapacity       int     `json:"max_capacity" yaml:"max_capacity"`

	// Staffing
	Coaches          int     `json:"coaches" yaml:"coaches"`
	FullTimeCoaches  int     `json:"full_time_coaches" yaml:"full_time_coaches"`
	CoachMemberRatio float64 `json:"coach_member_ratio" yaml:"coach_member_ratio"`
	CoachTenureYears float64 `json:"coach_tenure_years" yaml:"coach_tenure_years"`

	// Operations
	ClassesPerWeek      int     `json:"classes_per_week" yaml:"classes_per_week"`
	ClassFillRate       float64 `json:"class_fill_rate" yaml:"class_fill_rate"` // 0-100
	OpeningHoursPerWeek float64 `json:"opening_hours_per_week" yaml:"opening_hours_per_week"`

	// Marketing
	MarketingBudget float64 `json:"marketing_budget" yaml:"marketing_budget"`
	SocialFollowers int     `json:"social_followers" yaml:"social_followers"`
	EngagementRate  float64 `json:"engagement_rate" yaml:"engagement_rate"` // fraction, 0.02 = 2%
	ReviewCount     int     `json:"review_count" yaml:"review_count"`
	ReviewRating    float64 `json:"review_rating" yaml:"review_rating"` // 0-5

	// Competition
	Competitors     int            `json:"competitors" yaml:"competitors"`
	CompetitorPrice float64        `json:"competitor_price" yaml:"competitor_price"`
	MarketPosition  MarketPosition `json:"market_position" yaml:"market_position"`
}

// Validate checks the invariants every analysis relies on.
func (m Metrics) Validate() error {
	if m.ActiveSubscriptions <= 0 {
		return eris.Wrapf(ErrInvalidInput, "active_subscriptions must be positive, got %d", m.ActiveSubscriptions)
	}
	if m.LostMembers < 0 || m.NewMembers < 0 {
		return eris.Wrap(ErrInvalidInput, "member flow counts must not be negative")
	}
	for _, f := range m.floatFields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return eris.Wrapf(ErrInvalidInput, "%s must be a finite number, got %v", f.name, f.value)
		}
	}
	return nil
}

type namedFloat struct {
	name  string
	value float64
}

func (m Metrics) floatFields() []namedFloat {
	return []namedFloat{
		{"monthly_revenue", m.MonthlyRevenue},
		{"fixed_costs", m.FixedCosts},
		{"variable_costs", m.VariableCosts},
		{"rent", m.Rent},
		{"sublease_income", m.SubleaseIncome},
		{"payroll", m.Payroll},
		{"average_price", m.AveragePrice},
		{"sticker_price", m.StickerPrice},
		{"attendance_rate", m.AttendanceRate},
		{"member_tenure_months", m.MemberTenureMonths},
		{"total_area_m2", m.TotalAreaM2},
		{"training_area_m2", m.TrainingAreaM2},
		{"equipment_value", m.EquipmentValue},
		{"equipment_age_years", m.EquipmentAgeYears},
		{"coach_member_ratio", m.CoachMemberRatio},
		{"coach_tenure_years", m.CoachTenureYears},
		{"class_fill_rate", m.ClassFillRate},
		{"opening_hours_per_week", m.OpeningHoursPerWeek},
		{"marketing_budget", m.MarketingBudget},
		{"engagement_rate", m.EngagementRate},
		{"review_rating", m.ReviewRating},
		{"competitor_price", m.CompetitorPrice},
	}
}

// TotalRevenue is monthly revenue plus sublease income.
func (m Metrics) TotalRevenue() float64 {
	return m.MonthlyRevenue + m.SubleaseIncome
}

// TotalCosts is the sum of all monthly cost lines.
func (m Metrics) TotalCosts() float64 {
	return m.FixedCosts + m.VariableCosts + m.Rent + m.Payroll
}

// Position returns the parsed market position.
func (m Metrics) Position() MarketPosition {
	return ParsePosition(string(m.MarketPosition))
}
