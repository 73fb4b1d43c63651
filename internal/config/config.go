package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// http
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`
	// auth
	SessionTTL                  duration `toml:"session_ttl"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	// recommendations
	ExercisesCsvPath    string `toml:"exercises_csv_path"`
	PersistPlateauCycle bool   `toml:"persist_plateau_cycle"`

	Environment string `toml:"-"`
}

// duration lets TOML carry values like "168h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (c *Config) SessionTTLOrDefault(def time.Duration) time.Duration {
	if c.SessionTTL.Duration <= 0 {
		return def
	}
	return c.SessionTTL.Duration
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Get(env)
}
