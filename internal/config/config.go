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
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Pool    PoolConfig    `yaml:"pool" mapstructure:"pool"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// RulesConfig points at the rule table consumed at startup.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PoolConfig configures the historical auction pool source.
type PoolConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// GeocodeConfig configures the VWorld geocoder and its cache.
type GeocodeConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Keys rotate when a key exhausts its daily quota.
	Keys          []string `yaml:"keys" mapstructure:"keys"`
	DailyKeyQuota int      `yaml:"daily_key_quota" mapstructure:"daily_key_quota"`
	QPS           float64  `yaml:"qps" mapstructure:"qps"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CachePath     string   `yaml:"cache_path" mapstructure:"cache_path"`
}

// BatchConfig configures batch processing over bank-sheet subjects.
type BatchConfig struct {
	MaxConcurrentSubjects int    `yaml:"max_concurrent_subjects" mapstructure:"max_concurrent_subjects"`
	BankSheet             string `yaml:"bank_sheet" mapstructure:"bank_sheet"`
	HistoryPath           string `yaml:"history_path" mapstructure:"history_path"`
}

// ExportConfig configures result output.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
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
	v.AddConfigPath("./configs")

	// Environment
	v.SetEnvPrefix("COMPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("rules.path", "configs/rules.yaml")
	v.SetDefault("pool.sheet", "Sheet1")
	v.SetDefault("geocode.base_url", "https://api.vworld.kr/req/address")
	v.SetDefault("geocode.daily_key_quota", 20000)
	v.SetDefault("geocode.qps", 10)
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.cache_path", "geocode_cache.db")
	v.SetDefault("batch.max_concurrent_subjects", 5)
	v.SetDefault("batch.bank_sheet", "Sheet C-1")
	v.SetDefault("batch.history_path", "batch_runs.db")
	v.SetDefault("export.dir", "results")
	v.SetDefault("export.format", "xlsx")
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
