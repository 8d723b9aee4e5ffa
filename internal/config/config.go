// Package config loads the engine configuration from file, environment and
// defaults via Viper. Environment variables use the REPORT_ENGINE prefix,
// e.g. REPORT_ENGINE_SERVER_PORT.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete engine configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Content  ContentConfig  `mapstructure:"content"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	QA       QAConfig       `mapstructure:"qa"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// RulesConfig points at the rule-set document. An empty path selects the
// built-in tables.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// ContentConfig selects and configures the content backend.
type ContentConfig struct {
	Backend         string        `mapstructure:"backend"` // static | mongo
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"`
	MongoCollection string        `mapstructure:"mongo_collection"`
	MongoTimeout    time.Duration `mapstructure:"mongo_timeout"`
	CacheEnabled    bool          `mapstructure:"cache_enabled"`
	RedisURL        string        `mapstructure:"redis_url"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheLRUSize    int           `mapstructure:"cache_lru_size"`
	BreakerEnabled  bool          `mapstructure:"breaker_enabled"`
}

// AuditConfig selects and configures the audit backend.
type AuditConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite | postgres
	SQLitePath string `mapstructure:"sqlite_path"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Database   string `mapstructure:"database"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"ssl_mode"`
	MaxConns   int    `mapstructure:"max_conns"`
}

// PipelineConfig holds run-level settings.
type PipelineConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

// QAConfig configures the gate's advisory evaluator.
type QAConfig struct {
	EvaluatorEnabled  bool          `mapstructure:"evaluator_enabled"`
	EvaluatorURL      string        `mapstructure:"evaluator_url"`
	EvaluatorTimeout  time.Duration `mapstructure:"evaluator_timeout"`
	EvaluatorCanBlock bool          `mapstructure:"evaluator_can_block"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration from file (optional), environment and
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/report-engine/")

	v.SetEnvPrefix("REPORT_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file; defaults and environment carry everything
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)

	v.SetDefault("rules.path", "")

	v.SetDefault("content.backend", "static")
	v.SetDefault("content.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("content.mongo_database", "report_engine")
	v.SetDefault("content.mongo_collection", "content")
	v.SetDefault("content.mongo_timeout", "5s")
	v.SetDefault("content.cache_enabled", false)
	v.SetDefault("content.redis_url", "redis://localhost:6379")
	v.SetDefault("content.cache_ttl", "15m")
	v.SetDefault("content.cache_lru_size", 512)
	v.SetDefault("content.breaker_enabled", true)

	v.SetDefault("audit.backend", "sqlite")
	v.SetDefault("audit.sqlite_path", "audit.db")
	v.SetDefault("audit.host", "localhost")
	v.SetDefault("audit.port", 5432)
	v.SetDefault("audit.database", "report_engine")
	v.SetDefault("audit.username", "postgres")
	v.SetDefault("audit.password", "")
	v.SetDefault("audit.ssl_mode", "disable")
	v.SetDefault("audit.max_conns", 25)

	v.SetDefault("pipeline.default_language", "en")

	v.SetDefault("qa.evaluator_enabled", false)
	v.SetDefault("qa.evaluator_url", "")
	v.SetDefault("qa.evaluator_timeout", "10s")
	v.SetDefault("qa.evaluator_can_block", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func (c *Config) validate() error {
	switch c.Content.Backend {
	case "static", "mongo":
	default:
		return fmt.Errorf("unknown content backend %q", c.Content.Backend)
	}
	switch c.Audit.Backend {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown audit backend %q", c.Audit.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
