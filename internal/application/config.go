// Package application holds process-level configuration loading and
// validation.
package application

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// Config is the complete scanner configuration, loaded once at startup.
type Config struct {
	LogLevel string `yaml:"log_level"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Redis struct {
		Addr              string `yaml:"addr"`
		DB                int    `yaml:"db"`
		DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
	} `yaml:"redis"`

	Scan ScanConfig `yaml:"scan"`

	// Weights maps component names to raw (unnormalized) weights.
	Weights map[string]float64 `yaml:"weights"`
}

// ScanConfig holds the cadence and universe settings.
type ScanConfig struct {
	Symbols            []string      `yaml:"symbols"`
	EvaluationInterval time.Duration `yaml:"evaluation_interval"`
	ServingInterval    time.Duration `yaml:"serving_interval"`
	Window             time.Duration `yaml:"window"`
	TopN               int           `yaml:"top_n"`
	ProviderTimeout    time.Duration `yaml:"provider_timeout"`
	ProviderCacheTTL   time.Duration `yaml:"provider_cache_ttl"`
	ProviderRPS        float64       `yaml:"provider_rps"`
	ProviderBurst      int           `yaml:"provider_burst"`
}

// LoadConfig reads and validates the yaml config at path. Validation errors
// here are fatal: the process must not start evaluating in a bad state.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = "127.0.0.1:8080"
	}
	if c.Scan.EvaluationInterval == 0 {
		c.Scan.EvaluationInterval = 60 * time.Second
	}
	if c.Scan.ServingInterval == 0 {
		c.Scan.ServingInterval = 5 * time.Minute
	}
	if c.Scan.Window == 0 {
		c.Scan.Window = 2 * c.maxInterval()
	}
	if c.Scan.TopN == 0 {
		c.Scan.TopN = 20
	}
	if c.Scan.ProviderTimeout == 0 {
		c.Scan.ProviderTimeout = 10 * time.Second
	}
	if c.Scan.ProviderRPS == 0 {
		c.Scan.ProviderRPS = 10
	}
	if c.Scan.ProviderBurst == 0 {
		c.Scan.ProviderBurst = 5
	}
}

// Validate checks the fatal configuration invariants.
func (c *Config) Validate() error {
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("config: no symbols configured")
	}
	if c.Scan.TopN <= 0 {
		return fmt.Errorf("config: top_n must be positive, got %d", c.Scan.TopN)
	}
	if c.Scan.Window <= 0 {
		return fmt.Errorf("config: window must be positive, got %s", c.Scan.Window)
	}
	if c.Scan.EvaluationInterval <= 0 {
		return fmt.Errorf("config: evaluation_interval must be positive, got %s", c.Scan.EvaluationInterval)
	}
	if c.Scan.ServingInterval <= 0 {
		return fmt.Errorf("config: serving_interval must be positive, got %s", c.Scan.ServingInterval)
	}
	if c.Scan.ProviderTimeout <= 0 {
		return fmt.Errorf("config: provider_timeout must be positive, got %s", c.Scan.ProviderTimeout)
	}
	if _, err := c.WeightConfig(); err != nil {
		return err
	}
	return nil
}

// WeightConfig parses and normalizes the configured component weights.
func (c *Config) WeightConfig() (*confluence.WeightConfig, error) {
	return confluence.ParseWeightConfig(c.Weights)
}

// WindowWarning reports the cadence relation the window should satisfy:
// window >= 2 * max(evaluation_interval, serving_interval). A violation is a
// correctness risk (stale signals crowding the served set, or spurious gaps
// when one cycle runs late) but deployment values vary, so it warns instead
// of failing.
func (c *Config) WindowWarning() string {
	min := 2 * c.maxInterval()
	if c.Scan.Window < min {
		return fmt.Sprintf("window %s below recommended minimum %s (2x slower cadence); a late cycle will leave gaps in the served set", c.Scan.Window, min)
	}
	if c.Scan.Window > 4*min {
		return fmt.Sprintf("window %s far above recommended %s; stale high scores can crowd out current signals", c.Scan.Window, min)
	}
	return ""
}

func (c *Config) maxInterval() time.Duration {
	if c.Scan.EvaluationInterval > c.Scan.ServingInterval {
		return c.Scan.EvaluationInterval
	}
	return c.Scan.ServingInterval
}

// RedisTTL converts the configured ttl seconds to a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.DefaultTTLSeconds) * time.Second
}
