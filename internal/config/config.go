// Package config loads hisctl settings from ~/.hisctl/config.yaml and HIS_*
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hospital-is/hisctl/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. HIS_API_BASE_URL.
const EnvPrefix = "HIS"

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the effective configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Redirect  RedirectConfig  `mapstructure:"redirect"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`

	// path is the file that was read, empty when none existed.
	path string
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	LoginPath  string        `mapstructure:"login_path"`
	SignupPath string        `mapstructure:"signup_path"`
}

// SessionConfig selects where the session is kept.
type SessionConfig struct {
	Backend          string `mapstructure:"backend"`
	Dir              string `mapstructure:"dir"`
	Scope            string `mapstructure:"scope"`
	CheckTokenExpiry bool   `mapstructure:"check_token_expiry"`
}

// RedisConfig is used when session.backend is redis.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// RedirectConfig times the session-expired redirect.
type RedirectConfig struct {
	Delay    time.Duration `mapstructure:"delay"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// LoggingConfig controls the logger. File is used by the terminal UI,
// which owns stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultDir returns ~/.hisctl.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".hisctl"), nil
}

// DefaultPath returns ~/.hisctl/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.login_path", "/auth/login")
	v.SetDefault("api.signup_path", "/auth/signup")

	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("session.dir", filepath.Join(home, "sessions"))
	v.SetDefault("session.scope", "")
	v.SetDefault("session.check_token_expiry", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "12h")
	v.SetDefault("redis.prefix", "his:session:")

	v.SetDefault("redirect.delay", "100ms")
	v.SetDefault("redirect.cooldown", "1s")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", filepath.Join(home, "logs", "hisctl.log"))

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.service_name", "hisctl")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("metrics.addr", "")
}

// Load reads path (or the default path when empty), applies HIS_*
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	home, err := DefaultDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigRead, "cannot locate configuration directory", err)
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, "config.yaml")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, home)

	readPath := path
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("config file %s not found", path), err)
			}
			readPath = ""
		default:
			return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to read %s", path), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	cfg.path = readPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the configuration came from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewConfigInvalidError(fmt.Sprintf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		return errors.NewConfigInvalidError("api.timeout must not be negative")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Session.Dir == "" {
			return errors.NewConfigInvalidError("session.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.NewConfigInvalidError("redis.addr is required for the redis backend")
		}
	default:
		return errors.NewConfigInvalidError(fmt.Sprintf("session.backend %q must be memory, file or redis", c.Session.Backend))
	}

	if c.Redirect.Delay < 0 || c.Redirect.Cooldown < 0 {
		return errors.NewConfigInvalidError("redirect.delay and redirect.cooldown must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigInvalidError(fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.NewConfigInvalidError("telemetry.sample_rate must be between 0 and 1")
	}
	return nil
}

// view mirrors Config with durations as strings for display.
type view struct {
	API struct {
		BaseURL    string `yaml:"base_url"`
		Timeout    string `yaml:"timeout"`
		LoginPath  string `yaml:"login_path"`
		SignupPath string `yaml:"signup_path"`
	} `yaml:"api"`
	Session struct {
		Backend          string `yaml:"backend"`
		Dir              string `yaml:"dir"`
		Scope            string `yaml:"scope,omitempty"`
		CheckTokenExpiry bool   `yaml:"check_token_expiry"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password,omitempty"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Redirect struct {
		Delay    string `yaml:"delay"`
		Cooldown string `yaml:"cooldown"`
	} `yaml:"redirect"`
	Logging   LoggingConfig `yaml:"logging"`
	Telemetry struct {
		Enabled     bool    `yaml:"enabled"`
		Endpoint    string  `yaml:"endpoint,omitempty"`
		Insecure    bool    `yaml:"insecure"`
		ServiceName string  `yaml:"service_name"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"telemetry"`
	Metrics struct {
		Addr string `yaml:"addr,omitempty"`
	} `yaml:"metrics"`
}

// YAML renders the effective configuration. The Redis password is masked.
func (c *Config) YAML() ([]byte, error) {
	var out view
	out.API.BaseURL = c.API.BaseURL
	out.API.Timeout = c.API.Timeout.String()
	out.API.LoginPath = c.API.LoginPath
	out.API.SignupPath = c.API.SignupPath
	out.Session.Backend = c.Session.Backend
	out.Session.Dir = c.Session.Dir
	out.Session.Scope = c.Session.Scope
	out.Session.CheckTokenExpiry = c.Session.CheckTokenExpiry
	out.Redis.Addr = c.Redis.Addr
	if c.Redis.Password != "" {
		out.Redis.Password = "********"
	}
	out.Redis.DB = c.Redis.DB
	out.Redis.TTL = c.Redis.TTL.String()
	out.Redis.Prefix = c.Redis.Prefix
	out.Redirect.Delay = c.Redirect.Delay.String()
	out.Redirect.Cooldown = c.Redirect.Cooldown.String()
	out.Logging = c.Logging
	out.Telemetry.Enabled = c.Telemetry.Enabled
	out.Telemetry.Endpoint = c.Telemetry.Endpoint
	out.Telemetry.Insecure = c.Telemetry.Insecure
	out.Telemetry.ServiceName = c.Telemetry.ServiceName
	out.Telemetry.SampleRate = c.Telemetry.SampleRate
	out.Metrics.Addr = c.Metrics.Addr

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
