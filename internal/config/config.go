// Package config provides configuration management for the alert engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	History HistoryConfig `mapstructure:"history"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Store   StoreConfig   `mapstructure:"store"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// FeedConfig holds live price feed configuration.
type FeedConfig struct {
	URL            string        `mapstructure:"url"`
	HandshakeDelay time.Duration `mapstructure:"handshake_timeout"`
}

// HistoryConfig holds historical data provider configuration.
type HistoryConfig struct {
	ClosingPriceURL string        `mapstructure:"closing_price_url"`
	RatioURL        string        `mapstructure:"ratio_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// CacheConfig holds dedup cache configuration.
type CacheConfig struct {
	// Backend is "redis" or "memory".
	Backend  string `mapstructure:"backend"`
	RedisURL string `mapstructure:"redis_url"`
}

// StoreConfig holds alert definition store configuration.
type StoreConfig struct {
	Path         string        `mapstructure:"path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// NotifyConfig holds notification delivery configuration.
type NotifyConfig struct {
	URL       string        `mapstructure:"url"`
	AuthToken string        `mapstructure:"auth_token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MonitorConfig holds supervisor tuning.
type MonitorConfig struct {
	QueueSize     int           `mapstructure:"queue_size"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// WatcherConfig holds restart watcher tuning.
type WatcherConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// MetricsConfig holds the optional metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ticker-alerts"
	}
	return filepath.Join(home, ".config", "ticker-alerts")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.yaml: %w", err)
		}
		// Missing file is fine, defaults and env apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.yaml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.handshake_timeout", 30*time.Second)
	v.SetDefault("history.timeout", 15*time.Second)
	v.SetDefault("history.max_retries", 3)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.path", filepath.Join(DefaultConfigDir(), "alerts.db"))
	v.SetDefault("store.poll_interval", 30*time.Second)
	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("monitor.queue_size", 256)
	v.SetDefault("monitor.shutdown_grace", 5*time.Second)
	v.SetDefault("watcher.debounce", time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("metrics.addr", ":9108")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALERT_FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("ALERT_NOTIFY_URL"); v != "" {
		cfg.Notify.URL = v
	}
	if v := os.Getenv("NODE_AUTH_TOKEN"); v != "" {
		cfg.Notify.AuthToken = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
		cfg.Cache.Backend = "redis"
	}
	if v := os.Getenv("ALERT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("invalid cache backend: %s (must be 'memory' or 'redis')", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required for the redis backend")
	}
	if c.Monitor.QueueSize <= 0 {
		return fmt.Errorf("monitor.queue_size must be positive")
	}
	if c.Watcher.Debounce <= 0 {
		return fmt.Errorf("watcher.debounce must be positive")
	}
	return nil
}
