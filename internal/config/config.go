package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Reasoning ReasoningConfig `yaml:"reasoning" mapstructure:"reasoning"`
	Coverage  CoverageConfig  `yaml:"coverage" mapstructure:"coverage"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ReasoningConfig holds Anthropic API settings for the reasoning service.
type ReasoningConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// CoverageConfig holds the tunable coordination constants. Fallback rates
// and region rules are configuration, not hard-coded law.
type CoverageConfig struct {
	// DefaultProvider is the insurer queried for a plan record during
	// adjudication.
	DefaultProvider string `yaml:"default_provider" mapstructure:"default_provider"`
	// PrivateFallbackRate multiplies the bill total when no usable
	// reasoning-service amount is available.
	PrivateFallbackRate float64 `yaml:"private_fallback_rate" mapstructure:"private_fallback_rate"`
	// FallbackRegion is queried for aid programs when the requested region
	// has none. The dataset is Ontario-centric.
	FallbackRegion string `yaml:"fallback_region" mapstructure:"fallback_region"`
	// AidRules maps lowercase region names to rule-based aid shares.
	// Regions without an entry receive no fallback aid.
	AidRules map[string]AidRule `yaml:"aid_rules" mapstructure:"aid_rules"`
}

// AidRule is one region's rule-based aid computation: remaining * Share,
// optionally capped, never exceeding the remaining balance.
type AidRule struct {
	Share float64 `yaml:"share" mapstructure:"share"`
	Cap   float64 `yaml:"cap" mapstructure:"cap"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrentBills int `yaml:"max_concurrent_bills" mapstructure:"max_concurrent_bills"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SALUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "salus.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("batch.max_concurrent_bills", 5)
	v.SetDefault("reasoning.model", "claude-haiku-4-5-20251001")
	v.SetDefault("reasoning.max_tokens", 1024)
	v.SetDefault("reasoning.rate_rps", 2)
	v.SetDefault("reasoning.rate_burst", 4)
	v.SetDefault("coverage.default_provider", "Sun Life")
	v.SetDefault("coverage.private_fallback_rate", 0.70)
	v.SetDefault("coverage.fallback_region", "Ontario")
	v.SetDefault("coverage.aid_rules.ontario.share", 0.5)
	v.SetDefault("coverage.aid_rules.canada.share", 0.5)

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
