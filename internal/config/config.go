package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Rules      RulesFileConfig  `yaml:"rules" mapstructure:"rules"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// MonitoringConfig configures the background alert checker of the server.
type MonitoringConfig struct {
	Enabled             bool    `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL          string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs   int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	MinRuns             int     `yaml:"min_runs" mapstructure:"min_runs"`
	LowScoreThreshold   float64 `yaml:"low_score_threshold" mapstructure:"low_score_threshold"`
	FailingShareMax     float64 `yaml:"failing_share_max" mapstructure:"failing_share_max"`
}

// RulesFileConfig points at an optional YAML file of insight thresholds.
type RulesFileConfig struct {
	ThresholdsFile string `yaml:"thresholds_file" mapstructure:"thresholds_file"`
}

// EngineConfig is everything the analysis engine needs.
type EngineConfig struct {
	Scoring    ScoringConfig
	Rules      RulesConfig
	Projection ProjectionConfig
}

// DefaultEngineConfig returns the built-in engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Scoring:    DefaultScoringConfig(),
		Rules:      DefaultRulesConfig(),
		Projection: DefaultProjectionConfig(),
	}
}

// Engine assembles the engine configuration, reading the thresholds file
// when one is configured.
func (c *Config) Engine() (EngineConfig, error) {
	rules := DefaultRulesConfig()
	if c.Rules.ThresholdsFile != "" {
		var err error
		rules, err = LoadRules(c.Rules.ThresholdsFile)
		if err != nil {
			return EngineConfig{}, err
		}
	}
	return EngineConfig{
		Scoring:    c.Scoring,
		Rules:      rules,
		Projection: c.Projection,
	}, nil
}

// Load reads configuration from .env, config.yaml and GYMAUDIT_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GYMAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "gymaudit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent", 8)
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.min_runs", 5)
	v.SetDefault("monitoring.low_score_threshold", 45.0)
	v.SetDefault("monitoring.failing_share_max", 0.5)

	sc := DefaultScoringConfig()
	v.SetDefault("scoring.weights.financial_health", sc.Weights.FinancialHealth)
	v.SetDefault("scoring.weights.operational_efficiency", sc.Weights.OperationalEfficiency)
	v.SetDefault("scoring.weights.member_satisfaction", sc.Weights.MemberSatisfaction)
	v.SetDefault("scoring.weights.growth_potential", sc.Weights.GrowthPotential)
	v.SetDefault("scoring.weights.competitive_position", sc.Weights.CompetitivePosition)

	pc := DefaultProjectionConfig()
	v.SetDefault("projection.horizon_months", pc.HorizonMonths)
	v.SetDefault("projection.deceleration", pc.Deceleration)
	v.SetDefault("projection.ltv_margin", pc.LTVMargin)
	v.SetDefault("projection.ltv_cac_divisor", pc.LTVCACDivisor)
	v.SetDefault("projection.loan_years", pc.LoanYears)
	v.SetDefault("projection.loan_rate", pc.LoanRatePct)
	v.SetDefault("projection.adoption_scenarios", pc.AdoptionScenarios)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return eris.Wrapf(err, "config: load %s", path)
	}
	return nil
}

// Validate checks the settings a command mode depends on. Modes: "analyze",
// "store", "serve", "batch".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "analyze":
	case "store":
		errs = append(errs, c.validateStore()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
			errs = append(errs, "server.rate_burst must be > 0 when rate_limit is set")
		}
		if c.Monitoring.Enabled && c.Monitoring.LookbackWindowHours <= 0 {
			errs = append(errs, "monitoring.lookback_window_hours must be > 0")
		}
	case "batch":
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
			errs = append(errs, "batch.max_concurrent must be between 1 and 64")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Projection.HorizonMonths < 0 {
		errs = append(errs, "projection.horizon_months must be >= 0")
	}
	if c.Projection.LoanYears < 0 {
		errs = append(errs, "projection.loan_years must be >= 0")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
