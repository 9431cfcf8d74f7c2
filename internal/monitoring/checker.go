package monitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
)

const defaultCheckInterval = 5 * time.Minute

// Checker periodically summarizes the audits stored within the lookback
// window and raises score alerts.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
}

// NewChecker creates a background score checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{collector: collector, alerter: alerter, cfg: cfg}
}

// Run checks once at start, then on every tick, until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting score checker",
		zap.Duration("interval", interval),
		zap.Int("lookback_hours", c.cfg.LookbackWindowHours),
		zap.Float64("low_score_threshold", c.cfg.LowScoreThreshold),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.check(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("score checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

// check summarizes the window and returns the number of alerts raised.
func (c *Checker) check(ctx context.Context, log *zap.Logger) int {
	snap, err := c.collector.Collect(ctx, c.cfg.LookbackWindowHours)
	if err != nil {
		log.Error("monitoring: collect audit window", zap.Error(err))
		return 0
	}
	if snap.RunsTotal == 0 {
		log.Debug("monitoring: no audits in window")
		return 0
	}

	log.Info("monitoring: audit window",
		zap.Int("runs", snap.RunsTotal),
		zap.Float64("average_score", snap.AverageScore),
		zap.String("average_grade", string(model.GradeFor(snap.AverageScore))),
		zap.String("grades", gradeSummary(snap.GradeCounts)),
		zap.Float64("failing_share", snap.FailingShare),
	)

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		return 0
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	log.Warn("monitoring: score alerts raised",
		zap.Int("alerts", len(alerts)),
		zap.Int("sent", sent),
	)
	return len(alerts)
}

// gradeSummary renders non-zero grade counts best first, e.g. "A+=1 B=3 F=1".
func gradeSummary(counts map[model.Grade]int) string {
	parts := make([]string, 0, len(model.Grades))
	for _, g := range model.Grades {
		if n := counts[g]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", g, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
