// Package monitoring exposes prometheus metrics for analyses and HTTP
// traffic, and runs a background check that alerts when recent audits trend
// badly.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymaudit_analyses_total",
			Help: "Total number of analyses run",
		},
		[]string{"source", "outcome"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymaudit_analysis_duration_seconds",
			Help:    "Duration of a full analysis in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"source"},
	)

	OverallScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gymaudit_overall_score",
			Help:    "Distribution of overall scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		},
	)

	InsightsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymaudit_insights_total",
			Help: "Total number of insights generated",
		},
		[]string{"category", "severity"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymaudit_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gymaudit_http_request_duration_seconds",
			Help: "Duration of API requests in seconds",
		},
		[]string{"route"},
	)

	WindowRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymaudit_window_runs",
			Help: "Stored analysis runs inside the monitoring lookback window",
		},
	)

	WindowAverageScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymaudit_window_average_score",
			Help: "Average overall score inside the monitoring lookback window",
		},
	)

	WindowGradeRuns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gymaudit_window_grade_runs",
			Help: "Stored analysis runs per grade inside the monitoring lookback window",
		},
		[]string{"grade"},
	)
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// RecordAnalysis counts one analysis. result may be nil when outcome is not
// OutcomeOK.
func RecordAnalysis(source, outcome string, result *model.AnalysisResult, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(source, outcome).Inc()
	AnalysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if result == nil {
		return
	}
	OverallScores.Observe(result.Scores.Score)
	for _, in := range result.Insights {
		InsightsTotal.WithLabelValues(string(in.Category), string(in.Severity)).Inc()
	}
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, method, status string, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, status).Inc()
	HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
