// Package config loads application configuration from file and environment.
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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	FRED    FREDConfig    `yaml:"fred" mapstructure:"fred"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Backup  BackupConfig  `yaml:"backup" mapstructure:"backup"`
	Basket  BasketConfig  `yaml:"basket" mapstructure:"basket"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// FREDConfig holds provider credentials and request pacing.
type FREDConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	PaceEvery   int    `yaml:"pace_every" mapstructure:"pace_every"`
	PaceDelayMS int    `yaml:"pace_delay_ms" mapstructure:"pace_delay_ms"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// RefreshConfig tunes the refresh orchestrator.
type RefreshConfig struct {
	YearsBack      int `yaml:"years_back" mapstructure:"years_back"`
	LookbackDays   int `yaml:"lookback_days" mapstructure:"lookback_days"`
	StaleAfterDays int `yaml:"stale_after_days" mapstructure:"stale_after_days"`
}

// BackupConfig configures snapshot writing.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// BasketConfig optionally overrides the compiled-in series catalog.
type BasketConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml from the working directory, overlaid with
// MACRODASH_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MACRODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key is registered here, even the empty ones:
	// viper only overlays MACRODASH_* values onto keys it knows about.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "macrodash.db")
	v.SetDefault("store.max_conns", 0)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("fred.api_key", "")
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org")
	v.SetDefault("fred.pace_every", 20)
	v.SetDefault("fred.pace_delay_ms", 1000)
	v.SetDefault("fred.timeout_secs", 30)
	v.SetDefault("fred.max_retries", 3)
	v.SetDefault("refresh.years_back", 5)
	v.SetDefault("refresh.lookback_days", 30)
	v.SetDefault("refresh.stale_after_days", 45)
	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("basket.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
