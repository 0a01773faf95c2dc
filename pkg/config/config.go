// Package config loads burst-fetch settings: built-in defaults, an optional
// YAML file, then environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/logging"
	"gopkg.in/yaml.v2"
)

// Defaults for a run without any configuration.
const (
	DefaultURL      = "http://localhost/"
	DefaultRequests = 20
	DefaultTimeout  = 30 * time.Second
)

// Environment variables read by Load.
const (
	EnvConfigFile = "BURST_CONFIG"
	EnvURL        = "BURST_URL"
	EnvRequests   = "BURST_REQUESTS"
	EnvTimeout    = "BURST_TIMEOUT"
	EnvUserAgent  = "BURST_USER_AGENT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogPretty  = "LOG_PRETTY"
	EnvPushURL    = "METRICS_PUSH_URL"
	EnvRedisAddr  = "REDIS_URL"
	EnvRedisPass  = "REDIS_PASSWORD"
	EnvRedisDB    = "REDIS_DB"
	EnvHistoryTTL = "BURST_HISTORY_TTL"
)

// Config holds all runtime settings.
type Config struct {
	URL       string        `yaml:"url"`
	Requests  int           `yaml:"requests"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Metrics struct {
		// PushURL is a Pushgateway base URL. Empty disables pushing.
		PushURL string `yaml:"push_url"`
	} `yaml:"metrics"`

	Redis struct {
		// Addr enables run history when set.
		Addr       string        `yaml:"addr"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db"`
		HistoryTTL time.Duration `yaml:"history_ttl"`
	} `yaml:"redis"`
}

// Default returns the configuration of a plain run.
func Default() Config {
	var cfg Config
	cfg.URL = DefaultURL
	cfg.Requests = DefaultRequests
	cfg.Timeout = DefaultTimeout
	cfg.Log.Level = string(logging.LevelInfo)
	cfg.Redis.HistoryTTL = 7 * 24 * time.Hour
	return cfg
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.URL, EnvURL)
	setString(&c.UserAgent, EnvUserAgent)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Metrics.PushURL, EnvPushURL)
	setString(&c.Redis.Addr, EnvRedisAddr)
	setString(&c.Redis.Password, EnvRedisPass)

	if v, ok := lookupEnv(EnvRequests); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvRequests, err)
		}
		c.Requests = n
	}
	if v, ok := lookupEnv(EnvRedisDB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvRedisDB, err)
		}
		c.Redis.DB = n
	}
	if v, ok := lookupEnv(EnvLogPretty); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvLogPretty, err)
		}
		c.Log.Pretty = b
	}
	if v, ok := lookupEnv(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := lookupEnv(EnvHistoryTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvHistoryTTL, err)
		}
		c.Redis.HistoryTTL = d
	}

	return nil
}

// lookupEnv treats an empty variable as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok {
		*dst = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", c.URL)
	}

	if c.Requests < 0 {
		return fmt.Errorf("requests must be >= 0 (got %d)", c.Requests)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", c.Timeout)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("redis db must be >= 0 (got %d)", c.Redis.DB)
	}
	if c.Redis.HistoryTTL < 0 {
		return fmt.Errorf("history ttl must be >= 0 (got %s)", c.Redis.HistoryTTL)
	}

	return nil
}

// Logging returns the logger configuration for this run.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
