package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/watch"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort = 8080
	DefaultCacheTTL = 10 * time.Minute
	DefaultHeader   = "x-api-key"
)

// Config holds the server configuration parsed from the service YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Estimate EstimateConfig `yaml:"estimate"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates REST clients.
	Auth AuthConfig `yaml:"auth"`

	// Cache controls in-memory result retention.
	Cache CacheConfig `yaml:"cache"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	// Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultHeader
}

// CacheConfig controls how long an inferred result is served again for an
// identical request. Accepts Prometheus-style durations such as "90s", "10m"
// or "1h30m".
type CacheConfig struct {
	TTL model.Duration `yaml:"ttl"`
}

// EstimateConfig selects the engine options applied to every request.
type EstimateConfig struct {
	// Locale is the warning language: en | zh.
	Locale string `yaml:"locale"`

	// DecayForm is the phase-2 cooling curve: continuous | literal.
	DecayForm string `yaml:"decay_form"`

	// FixedLocation makes every request use the default humidity context.
	FixedLocation bool `yaml:"fixed_location"`
}

// LogConfig sets the minimum log level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// EngineOptions converts the estimate section into engine options.
func (c *Config) EngineOptions() (estimate.Options, error) {
	locale, err := estimate.ParseLocale(c.Estimate.Locale)
	if err != nil {
		return estimate.Options{}, err
	}
	form, err := estimate.ParseDecayForm(c.Estimate.DecayForm)
	if err != nil {
		return estimate.Options{}, err
	}
	return estimate.Options{
		Locale:        locale,
		Decay:         form,
		FixedLocation: c.Estimate.FixedLocation,
	}, nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Watch reloads the config whenever the file changes and hands each valid
// version to onChange. Invalid edits are logged and skipped. It blocks until
// ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return watch.File(ctx, path, reloader(path, onChange))
}

// reloader builds the reload callback for Watch. An empty file is a save in
// progress, not an all-defaults config, so it never reaches onChange.
func reloader(path string, onChange func(*Config)) func() error {
	return func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("server config: read %q: %w", path, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			slog.Debug("config: skipping empty file", "path", path)
			return nil
		}
		cfg, err := parse(data)
		if err != nil {
			return err
		}
		onChange(cfg)
		return nil
	}
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Cache: CacheConfig{
				TTL: model.Duration(DefaultCacheTTL),
			},
		},
		Estimate: EstimateConfig{
			Locale:    string(estimate.LocaleEN),
			DecayForm: string(estimate.DecayContinuous),
		},
		Log: LogConfig{Level: "info"},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey":
		if cfg.Server.Auth.KeyEnv == "" {
			return fmt.Errorf("server.auth.key_env is required when mode is apikey")
		}
	case "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Cache.TTL < 0 {
		return fmt.Errorf("server.cache.ttl must not be negative")
	}
	if _, err := cfg.EngineOptions(); err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	return nil
}
