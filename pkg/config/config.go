// Package config loads the topology viewer configuration from YAML or TOML
// files, .env files and environment variables, and watches the live
// settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-topology/pkg/client"
	"github.com/dd0wney/cluso-topology/pkg/engine"
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/validation"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// Environment variables that override file values.
const (
	EnvAPIURL      = "TOPOLOGY_API_URL"
	EnvMetricsAddr = "TOPOLOGY_METRICS_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvRateLimit   = "TOPOLOGY_RATE_LIMIT"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the full viewer configuration.
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	View    ViewConfig    `yaml:"view" toml:"view"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" toml:"base_url"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout"`
	RateLimit float64       `yaml:"rate_limit" toml:"rate_limit"`
	Burst     int           `yaml:"burst" toml:"burst"`
	Breaker   BreakerConfig `yaml:"breaker" toml:"breaker"`
}

// BreakerConfig tunes the client circuit breaker.
type BreakerConfig struct {
	FailureThreshold float64       `yaml:"failure_threshold" toml:"failure_threshold"`
	MinRequests      int           `yaml:"min_requests" toml:"min_requests"`
	OpenTimeout      time.Duration `yaml:"open_timeout" toml:"open_timeout"`
	Interval         time.Duration `yaml:"interval" toml:"interval"`
}

// ViewConfig holds the initial view state.
type ViewConfig struct {
	Settings     visualization.Settings `yaml:"settings" toml:"settings"`
	SettingsFile string                 `yaml:"settings_file" toml:"settings_file"`
	FrameRate    int                    `yaml:"frame_rate" toml:"frame_rate"`
	Layout       string                 `yaml:"layout" toml:"layout"`
	NodeTypes    []string               `yaml:"node_types" toml:"node_types"`
	Relations    []string               `yaml:"relation_types" toml:"relation_types"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

// MetricsConfig configures the diagnostics server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	breaker := client.DefaultBreakerConfig()
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			Timeout:   client.DefaultTimeout,
			RateLimit: client.DefaultRateLimit,
			Burst:     client.DefaultBurst,
			Breaker: BreakerConfig{
				FailureThreshold: breaker.FailureThreshold,
				MinRequests:      int(breaker.MinRequests),
				OpenTimeout:      breaker.Timeout,
				Interval:         breaker.Interval,
			},
		},
		View: ViewConfig{
			Settings:  visualization.DefaultSettings(),
			FrameRate: 30,
			Layout:    "spiral",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays values from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.API.RateLimit = f
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	v := validation.NewConfigValidator("config")
	v.Required("api.base_url", c.API.BaseURL).
		URL("api.base_url", c.API.BaseURL).
		RangeDuration("api.timeout", c.API.Timeout, 100*time.Millisecond, 5*time.Minute).
		PositiveFloat("api.rate_limit", c.API.RateLimit).
		Positive("api.burst", c.API.Burst).
		RangeFloat("api.breaker.failure_threshold", c.API.Breaker.FailureThreshold, 0.01, 1).
		Positive("api.breaker.min_requests", c.API.Breaker.MinRequests).
		RangeDuration("api.breaker.open_timeout", c.API.Breaker.OpenTimeout, time.Second, time.Hour).
		Positive("view.frame_rate", c.View.FrameRate).
		OneOf("view.layout", c.View.Layout, engine.LayoutNames).
		OneOf("log.level", c.Log.Level, []string{"debug", "info", "warn", "error"}).
		OneOf("log.format", c.Log.Format, []string{"json", "text"}).
		Custom("view.settings", c.View.Settings.Validate).
		When(c.View.SettingsFile != "", func(v *validation.ConfigValidator) {
			v.Custom("view.settings_file", func() error {
				_, err := os.Stat(c.View.SettingsFile)
				return err
			})
		})

	for _, t := range c.View.NodeTypes {
		v.Custom("view.node_types", func() error {
			if _, ok := graph.ParseNodeType(t); !ok {
				return fmt.Errorf("unknown node type %q", t)
			}
			return nil
		})
	}
	for _, r := range c.View.Relations {
		v.Custom("view.relation_types", func() error {
			if _, ok := graph.ParseRelationType(r); !ok {
				return fmt.Errorf("unknown relation type %q", r)
			}
			return nil
		})
	}
	return v.Validate()
}

// ClientOptions converts the api section into client options.
func (c *Config) ClientOptions() []client.Option {
	return []client.Option{
		client.WithTimeout(c.API.Timeout),
		client.WithRateLimit(c.API.RateLimit, c.API.Burst),
		client.WithBreaker(client.BreakerConfig{
			MaxRequests:      1,
			Interval:         c.API.Breaker.Interval,
			Timeout:          c.API.Breaker.OpenTimeout,
			FailureThreshold: c.API.Breaker.FailureThreshold,
			MinRequests:      uint32(c.API.Breaker.MinRequests),
		}),
	}
}

// Filter converts the configured type lists into a graph filter. Validate
// has already rejected unknown names.
func (c *Config) Filter() graph.Filter {
	var f graph.Filter
	for _, s := range c.View.NodeTypes {
		if t, ok := graph.ParseNodeType(s); ok {
			f.NodeTypes = append(f.NodeTypes, t)
		}
	}
	for _, s := range c.View.Relations {
		if r, ok := graph.ParseRelationType(s); ok {
			f.RelationTypes = append(f.RelationTypes, r)
		}
	}
	return f
}

// FrameInterval is the tick period of the view loop.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(validation.Clamp(c.View.FrameRate, 1, 120))
}

// decodeFile decodes path into v, choosing the format by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}
