package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

// MetricsSnapshot holds a point-in-time view of recent audits.
type MetricsSnapshot struct {
	RunsTotal    int                 `json:"runs_total"`
	AverageScore float64             `json:"average_score"`
	FailingRuns  int                 `json:"failing_runs"` // graded D or F
	FailingShare float64             `json:"failing_share"`
	GradeCounts  map[model.Grade]int `json:"grade_counts"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// RunLister is the store method the collector needs.
type RunLister interface {
	ListAnalyses(ctx context.Context, filter store.RunFilter) ([]model.AnalysisRun, error)
}

// Collector gathers metrics from the run store.
type Collector struct {
	store RunLister
}

// NewCollector creates a new metrics collector.
func NewCollector(st RunLister) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	collected := time.Now().UTC()
	snap := &MetricsSnapshot{
		GradeCounts:   make(map[model.Grade]int),
		LookbackHours: lookbackHours,
		CollectedAt:   collected,
	}

	runs, err := c.store.ListAnalyses(ctx, store.RunFilter{
		CreatedAfter: collected.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list analyses")
	}

	var total float64
	for _, r := range runs {
		if r.Grade == "" {
			continue // saved without a result
		}
		snap.RunsTotal++
		total += r.OverallScore
		snap.GradeCounts[r.Grade]++
		if r.Grade.Rank() <= model.GradeD.Rank() {
			snap.FailingRuns++
		}
	}
	if snap.RunsTotal > 0 {
		snap.AverageScore = total / float64(snap.RunsTotal)
		snap.FailingShare = float64(snap.FailingRuns) / float64(snap.RunsTotal)
	}

	WindowRuns.Set(float64(snap.RunsTotal))
	WindowAverageScore.Set(snap.AverageScore)
	for _, g := range model.Grades {
		WindowGradeRuns.WithLabelValues(string(g)).Set(float64(snap.GradeCounts[g]))
	}
	return snap, nil
}
