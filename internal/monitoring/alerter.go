package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/resilience"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertLowAverageScore AlertType = "low_average_score"
	AlertFailingGyms     AlertType = "failing_gyms"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter turns a snapshot into alerts and posts them to a webhook.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	retry  resilience.RetryConfig
}

// NewAlerter creates an Alerter. Webhook posts are retried on 5xx answers
// and transient network errors.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	retry := resilience.DefaultRetryConfig()
	retry.InitialBackoff = 200 * time.Millisecond
	retry.ShouldRetry = retryableWebhookErr
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  retry,
	}
}

// webhookStatusError is a non-2xx answer from the webhook.
type webhookStatusError struct {
	status int
}

func (e *webhookStatusError) Error() string {
	return fmt.Sprintf("monitoring: webhook returned status %d", e.status)
}

func retryableWebhookErr(err error) bool {
	var se *webhookStatusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	return resilience.IsTransient(err)
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
// Windows with fewer than MinRuns runs never alert.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	if snap.RunsTotal == 0 || snap.RunsTotal < a.cfg.MinRuns {
		return nil
	}

	var alerts []Alert
	now := time.Now().UTC()

	if a.cfg.LowScoreThreshold > 0 && snap.AverageScore < a.cfg.LowScoreThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertLowAverageScore,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Average overall score %.1f is below %.1f (%d audits in last %dh)",
				snap.AverageScore, a.cfg.LowScoreThreshold, snap.RunsTotal, snap.LookbackHours,
			),
			Details: map[string]any{
				"average_score": snap.AverageScore,
				"threshold":     a.cfg.LowScoreThreshold,
				"runs":          snap.RunsTotal,
			},
			Timestamp: now,
		})
	}

	if a.cfg.FailingShareMax > 0 && snap.FailingShare > a.cfg.FailingShareMax {
		alerts = append(alerts, Alert{
			Type:     AlertFailingGyms,
			Severity: "high",
			Message: fmt.Sprintf(
				"%.1f%% of audited gyms graded D or F exceeds %.1f%% (%d of %d in last %dh)",
				snap.FailingShare*100, a.cfg.FailingShareMax*100,
				snap.FailingRuns, snap.RunsTotal, snap.LookbackHours,
			),
			Details: map[string]any{
				"failing_share": snap.FailingShare,
				"threshold":     a.cfg.FailingShareMax,
				"failing":       snap.FailingRuns,
				"runs":          snap.RunsTotal,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		err := resilience.Do(ctx, a.retry, func(ctx context.Context) error {
			return a.post(ctx, alert)
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

func (a *Alerter) post(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Alert-Type", string(alert.Type))

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return &webhookStatusError{status: resp.StatusCode}
	}
	return nil
}
