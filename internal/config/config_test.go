package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "gymaudit.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 0.30, cfg.Scoring.Weights.FinancialHealth, 0.001)
	assert.InDelta(t, 0.15, cfg.Scoring.Weights.CompetitivePosition, 0.001)
	assert.InDelta(t, 1.0, cfg.Scoring.Weights.Sum(), 1e-9)
	assert.Equal(t, 12, cfg.Projection.HorizonMonths)
	assert.InDelta(t, 0.95, cfg.Projection.Deceleration, 0.001)
	assert.InDelta(t, 0.60, cfg.Projection.LTVMargin, 0.001)
	assert.Equal(t, 7, cfg.Projection.LoanYears)
	assert.InDelta(t, 4.0, cfg.Projection.LoanRatePct, 0.001)
	assert.Equal(t, []float64{0.3, 0.5, 0.7, 1.0}, cfg.Projection.AdoptionScenarios)
	assert.Empty(t, cfg.Rules.ThresholdsFile)
	assert.False(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 300, cfg.Monitoring.CheckIntervalSecs)
	assert.Equal(t, 24, cfg.Monitoring.LookbackWindowHours)
	assert.Equal(t, 5, cfg.Monitoring.MinRuns)
	assert.InDelta(t, 45.0, cfg.Monitoring.LowScoreThreshold, 0.001)
	assert.InDelta(t, 0.5, cfg.Monitoring.FailingShareMax, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/gym
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent: 4
scoring:
  weights:
    financial_health: 0.4
    growth_potential: 0.05
projection:
  loan_years: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/gym", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 0.4, cfg.Scoring.Weights.FinancialHealth, 0.001)
	assert.InDelta(t, 0.05, cfg.Scoring.Weights.GrowthPotential, 0.001)
	assert.Equal(t, 10, cfg.Projection.LoanYears)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.20, cfg.Scoring.Weights.MemberSatisfaction, 0.001)
	assert.Equal(t, 12, cfg.Projection.HorizonMonths)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GYMAUDIT_STORE_DRIVER", "postgres")
	t.Setenv("GYMAUDIT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GYMAUDIT_SERVER_PORT=7070\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("GYMAUDIT_SERVER_PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadEnvOverridesDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GYMAUDIT_SERVER_PORT=7070\n"), 0644))
	t.Setenv("GYMAUDIT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "gymaudit.db"
	cfg.Server.Port = 5000
	cfg.Server.RateLimit = 20
	cfg.Server.RateBurst = 40
	cfg.Batch.MaxConcurrent = 8
	cfg.Projection = DefaultProjectionConfig()
	return cfg
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 5000
	cfg.Server.RateBurst = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate_burst")

	cfg.Server.RateBurst = 40
	cfg.Monitoring.Enabled = true
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring.lookback_window_hours")
}

func TestValidateStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "; ")

	assert.NoError(t, cfg.Validate("analyze"))
}

func TestValidateBatchBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrent = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.max_concurrent must be between 1 and 64")

	cfg.Batch.MaxConcurrent = 65
	assert.Error(t, cfg.Validate("batch"))

	cfg.Batch.MaxConcurrent = 64
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestEngineWithThresholdsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  churn_max: 6\n"), 0644))

	cfg := validDefaults()
	cfg.Scoring = DefaultScoringConfig()
	cfg.Rules.ThresholdsFile = path

	eng, err := cfg.Engine()
	require.NoError(t, err)
	assert.InDelta(t, 6.0, eng.Rules.ChurnMax, 0.001)
	assert.InDelta(t, 12.0, eng.Rules.ChurnCritical, 0.001)
	assert.Equal(t, cfg.Projection, eng.Projection)

	cfg.Rules.ThresholdsFile = filepath.Join(dir, "missing.yaml")
	_, err = cfg.Engine()
	assert.Error(t, err)
}
