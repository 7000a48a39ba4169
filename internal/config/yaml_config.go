package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"seotrack/internal/platform"
	"seotrack/internal/scoring"
)

// YAMLConfig represents the structure of the config.yaml file.
// The platform table is easier to manage in YAML than env vars.
type YAMLConfig struct {
	Platforms []PlatformConfig `yaml:"platforms"`
	Defaults  DefaultsConfig   `yaml:"defaults"`
}

// PlatformConfig defines one collected platform.
type PlatformConfig struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
	Rate   float64 `yaml:"rate,omitempty"`  // requests per second, 0 = unlimited
	Burst  int     `yaml:"burst,omitempty"` // defaults to 1
}

// DefaultsConfig defines default settings.
type DefaultsConfig struct {
	Weight float64 `yaml:"weight"` // weight for platforms missing from the table
	Rate   float64 `yaml:"rate"`
	Burst  int     `yaml:"burst"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig parses and checks a YAML configuration document.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cfg.Platforms))
	for i := range cfg.Platforms {
		p := &cfg.Platforms[i]
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Name == "" {
			return nil, fmt.Errorf("platform %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("platform %q listed twice", p.Name)
		}
		seen[p.Name] = true
		if p.Weight < 0 {
			return nil, fmt.Errorf("platform %q has negative weight", p.Name)
		}
	}

	// Set defaults
	if cfg.Defaults.Weight == 0 {
		cfg.Defaults.Weight = scoring.DefaultPlatformWeight
	}

	return &cfg, nil
}

// Weights returns the scoring weight table. A nil config or an empty
// platform list yields the built-in table.
func (c *YAMLConfig) Weights() scoring.Weights {
	if c == nil || len(c.Platforms) == 0 {
		return scoring.DefaultWeights()
	}
	table := make(map[string]float64, len(c.Platforms))
	for _, p := range c.Platforms {
		table[p.Name] = p.Weight
	}
	return scoring.NewWeights(table, c.Defaults.Weight)
}

// PlatformNames returns the platforms to collect, in file order. A nil config
// yields the built-in table's platforms.
func (c *YAMLConfig) PlatformNames() []string {
	if c == nil || len(c.Platforms) == 0 {
		return scoring.DefaultWeights().Names()
	}
	names := make([]string, len(c.Platforms))
	for i, p := range c.Platforms {
		names[i] = p.Name
	}
	return names
}

// Limits returns the per-platform request pacing and the default pacing.
func (c *YAMLConfig) Limits() (map[string]platform.Limits, platform.Limits) {
	if c == nil {
		return nil, platform.Limits{}
	}
	limits := make(map[string]platform.Limits, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.Rate > 0 {
			limits[p.Name] = platform.Limits{Rate: p.Rate, Burst: p.Burst}
		}
	}
	return limits, platform.Limits{Rate: c.Defaults.Rate, Burst: c.Defaults.Burst}
}
