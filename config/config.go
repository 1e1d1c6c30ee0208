// Package config loads client profiles from YAML and merges them over the
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Duration parses YAML scalars like "50ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// RetryMode selects the retry strategy flavor.
type RetryMode string

const (
	RetryModeStandard RetryMode = "standard"
	RetryModeAdaptive RetryMode = "adaptive"
)

// Profile is one named client configuration.
type Profile struct {
	Region  string `yaml:"region"`
	Service string `yaml:"service"`

	Retry struct {
		Mode        RetryMode `yaml:"mode"`
		MaxAttempts int       `yaml:"max-attempts"`
	} `yaml:"retry"`

	Backoff struct {
		InitialDelay Duration `yaml:"initial-delay"`
		MaxBackoff   Duration `yaml:"max-backoff"`
		ScaleFactor  float64       `yaml:"scale-factor"`
		Jitter       float64       `yaml:"jitter"`
	} `yaml:"backoff"`

	Breaker struct {
		Type             string        `yaml:"type"`
		Failures         int           `yaml:"failures"`
		Window           int           `yaml:"window"`
		Timeout          Duration      `yaml:"timeout"`
		HalfOpenRequests int           `yaml:"half-open-requests"`
		IdleTTL          Duration      `yaml:"idle-ttl"`
	} `yaml:"breaker"`
}

// Config is the parsed profile file.
type Config struct {
	Default  Profile            `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Defaults mirror the standard retry mode.
func Defaults() Profile {
	var p Profile
	p.Retry.Mode = RetryModeStandard
	p.Retry.MaxAttempts = 3
	p.Backoff.InitialDelay = Duration(10 * time.Millisecond)
	p.Backoff.MaxBackoff = Duration(20 * time.Second)
	p.Backoff.ScaleFactor = 2.0
	p.Backoff.Jitter = 1.0
	return p
}

// Load reads and parses path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &c, nil
}

// Resolve merges the named profile over the default profile over the
// built-in defaults. An empty name selects the default profile alone.
func (c *Config) Resolve(name string) (Profile, error) {
	merged := merge(c.Default, Defaults())
	if name == "" {
		return merged, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return merge(p, merged), nil
}

// merge fills the zero fields of p from base, field by field the way
// breaker settings merge.
func merge(p, base Profile) Profile {
	if p.Region == "" {
		p.Region = base.Region
	}
	if p.Service == "" {
		p.Service = base.Service
	}
	if p.Retry.Mode == "" {
		p.Retry.Mode = base.Retry.Mode
	}
	if p.Retry.MaxAttempts == 0 {
		p.Retry.MaxAttempts = base.Retry.MaxAttempts
	}
	if p.Backoff.InitialDelay == 0 {
		p.Backoff.InitialDelay = base.Backoff.InitialDelay
	}
	if p.Backoff.MaxBackoff == 0 {
		p.Backoff.MaxBackoff = base.Backoff.MaxBackoff
	}
	if p.Backoff.ScaleFactor == 0 {
		p.Backoff.ScaleFactor = base.Backoff.ScaleFactor
	}
	if p.Backoff.Jitter == 0 {
		p.Backoff.Jitter = base.Backoff.Jitter
	}
	if p.Breaker.Type == "" {
		p.Breaker = base.Breaker
	}
	return p
}
