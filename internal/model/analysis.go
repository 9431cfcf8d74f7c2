package model

import "time"

// GymSummary echoes the headline figures of the analyzed record.
type GymSummary struct {
	Members        int     `json:"members"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	AreaM2         float64 `json:"area_m2"`
	Coaches        int     `json:"coaches"`
}

// AnalysisResult is the complete output of one analysis.
type AnalysisResult struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Summary     GymSummary            `json:"gym_summary"`
	Scores      OverallScore          `json:"scores"`
	Insights    []Insight             `json:"insights"`
	Projections Projections           `json:"projections"`
	Acquisition *AcquisitionViability `json:"acquisition_analysis,omitempty"`
}

// AnalysisRun is a persisted analysis together with its input.
type AnalysisRun struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Metrics      Metrics         `json:"metrics"`
	Result       *AnalysisResult `json:"result"`
	OverallScore float64         `json:"overall_score"`
	Grade        Grade           `json:"grade"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Benchmark is a market reference value used for comparison.
type Benchmark struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
