// Package benchmark compares a metrics record with market reference values.
package benchmark

import (
	"math"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

// Benchmark keys.
const (
	KeyARPM               = "arpm"
	KeyChurnTarget        = "churn_target"
	KeyConversionTarget   = "conversion_target"
	KeyRentRatioMax       = "rent_ratio_max"
	KeyPayrollRatioMax    = "payroll_ratio_max"
	KeyEBITDATarget       = "ebitda_target"
	KeyOccupancyTarget    = "occupancy_target"
	KeyRevenuePerM2Target = "revenue_per_m2_target"
)

// Defaults returns the built-in market benchmarks.
func Defaults() []model.Benchmark {
	return []model.Benchmark{
		{Key: KeyARPM, Name: "Average revenue per member", Value: 85, Unit: "EUR", Category: "pricing",
			Description: "Average monthly revenue per member in the local market"},
		{Key: KeyChurnTarget, Name: "Target churn rate", Value: 2, Unit: "%", Category: "retention",
			Description: "Monthly share of members lost"},
		{Key: KeyConversionTarget, Name: "Target conversion rate", Value: 40, Unit: "%", Category: "acquisition",
			Description: "Trial to member conversion"},
		{Key: KeyRentRatioMax, Name: "Maximum rent to revenue ratio", Value: 15, Unit: "%", Category: "finance",
			Description: "Rent as a share of monthly revenue"},
		{Key: KeyPayrollRatioMax, Name: "Maximum payroll to revenue ratio", Value: 45, Unit: "%", Category: "finance",
			Description: "Payroll as a share of monthly revenue"},
		{Key: KeyEBITDATarget, Name: "Target EBITDA margin", Value: 20, Unit: "%", Category: "finance",
			Description: "Operating margin before depreciation"},
		{Key: KeyOccupancyTarget, Name: "Target occupancy rate", Value: 70, Unit: "%", Category: "operations",
			Description: "Average class fill rate"},
		{Key: KeyRevenuePerM2Target, Name: "Target annual revenue per m²", Value: 300, Unit: "EUR", Category: "operations",
			Description: "Annual revenue divided by total floor area"},
	}
}

// Comparison is one benchmark applied to a record. Actual and Meets are nil
// when the record cannot be measured against the benchmark.
type Comparison struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
	Target   float64  `json:"target"`
	Actual   *float64 `json:"actual"`
	Meets    *bool    `json:"meets"`
	Gap      *float64 `json:"gap"`
}

// measure extracts the value a benchmark applies to. ok is false when the
// record lacks the data.
type measure struct {
	actual  func(m model.Metrics) (float64, bool)
	ceiling bool // met at or below the target
}

var measures = map[string]measure{
	KeyARPM: {actual: func(m model.Metrics) (float64, bool) {
		return m.AveragePrice, m.AveragePrice > 0
	}},
	KeyChurnTarget: {ceiling: true, actual: func(m model.Metrics) (float64, bool) {
		return ratioPct(float64(m.LostMembers), float64(m.ActiveSubscriptions))
	}},
	KeyRentRatioMax: {ceiling: true, actual: func(m model.Metrics) (float64, bool) {
		return ratioPct(m.Rent, m.MonthlyRevenue)
	}},
	KeyPayrollRatioMax: {ceiling: true, actual: func(m model.Metrics) (float64, bool) {
		return ratioPct(m.Payroll, m.MonthlyRevenue)
	}},
	KeyEBITDATarget: {actual: func(m model.Metrics) (float64, bool) {
		return ratioPct(m.TotalRevenue()-m.TotalCosts(), m.TotalRevenue())
	}},
	KeyOccupancyTarget: {actual: func(m model.Metrics) (float64, bool) {
		return m.ClassFillRate, m.ClassFillRate > 0
	}},
	KeyRevenuePerM2Target: {actual: func(m model.Metrics) (float64, bool) {
		if m.TotalAreaM2 <= 0 {
			return 0, false
		}
		return m.MonthlyRevenue * 12 / m.TotalAreaM2, true
	}},
}

// Compare applies every benchmark to m, in the order given. Benchmarks with
// no matching record field, such as the conversion target, are reported
// without an actual value.
func Compare(m model.Metrics, benchmarks []model.Benchmark) []Comparison {
	out := make([]Comparison, 0, len(benchmarks))
	for _, b := range benchmarks {
		c := Comparison{
			Key:      b.Key,
			Name:     b.Name,
			Unit:     b.Unit,
			Category: b.Category,
			Target:   b.Value,
		}
		if ms, ok := measures[b.Key]; ok {
			if v, ok := ms.actual(m); ok {
				v = round2(v)
				meets := v >= b.Value
				if ms.ceiling {
					meets = v <= b.Value
				}
				gap := round2(v - b.Value)
				c.Actual = &v
				c.Meets = &meets
				c.Gap = &gap
			}
		}
		out = append(out, c)
	}
	return out
}

func ratioPct(num, den float64) (float64, bool) {
	if den <= 0 {
		return 0, false
	}
	return num / den * 100, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
