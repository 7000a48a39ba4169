package config

import (
	"os"
	"path/filepath"
	"testing"

	"seotrack/internal/scoring"
)

const sampleYAML = `
platforms:
  - name: Google
    weight: 1.0
    rate: 2
    burst: 4
  - name: bing
    weight: 0.8
  - name: duckduckgo
    weight: 0.6
defaults:
  weight: 0.4
  rate: 1
`

func TestParseYAMLConfig(t *testing.T) {
	cfg, err := ParseYAMLConfig([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseYAMLConfig() error = %v", err)
	}

	names := cfg.PlatformNames()
	if len(names) != 3 || names[0] != "google" || names[2] != "duckduckgo" {
		t.Errorf("PlatformNames() = %v", names)
	}

	w := cfg.Weights()
	if w.Len() != 3 {
		t.Errorf("Weights().Len() = %d, want 3", w.Len())
	}
	if got := w.For("DuckDuckGo"); got != 0.6 {
		t.Errorf("For(DuckDuckGo) = %v, want 0.6", got)
	}
	if got := w.For("yandex"); got != 0.4 {
		t.Errorf("For(yandex) = %v, want default 0.4", got)
	}

	limits, def := cfg.Limits()
	if l := limits["google"]; l.Rate != 2 || l.Burst != 4 {
		t.Errorf("limits[google] = %+v", l)
	}
	if _, ok := limits["bing"]; ok {
		t.Error("bing has no rate and should use the default")
	}
	if def.Rate != 1 {
		t.Errorf("default rate = %v, want 1", def.Rate)
	}
}

func TestParseYAMLConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "platforms:\n  - weight: 1\n"},
		{"duplicate", "platforms:\n  - name: google\n  - name: GOOGLE\n"},
		{"negative weight", "platforms:\n  - name: google\n    weight: -1\n"},
		{"bad yaml", "platforms: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAMLConfig([]byte(tt.yaml)); err == nil {
				t.Error("ParseYAMLConfig() error = nil, want error")
			}
		})
	}
}

func TestParseYAMLConfig_DefaultWeight(t *testing.T) {
	cfg, err := ParseYAMLConfig([]byte("platforms:\n  - name: google\n    weight: 1\n"))
	if err != nil {
		t.Fatalf("ParseYAMLConfig() error = %v", err)
	}
	if cfg.Defaults.Weight != scoring.DefaultPlatformWeight {
		t.Errorf("Defaults.Weight = %v, want %v", cfg.Defaults.Weight, scoring.DefaultPlatformWeight)
	}
}

func TestNilYAMLConfig_UsesBuiltins(t *testing.T) {
	var cfg *YAMLConfig

	if got := cfg.Weights().Len(); got != scoring.DefaultWeights().Len() {
		t.Errorf("Weights().Len() = %d, want built-in table", got)
	}
	if got := len(cfg.PlatformNames()); got != 6 {
		t.Errorf("PlatformNames() = %d names, want 6", got)
	}
	limits, _ := cfg.Limits()
	if limits != nil {
		t.Errorf("Limits() = %v, want nil", limits)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	cfg, err := LoadYAMLConfig()
	if err != nil || cfg != nil {
		t.Errorf("LoadYAMLConfig() missing file = %v, %v; want nil, nil", cfg, err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	cfg, err = LoadYAMLConfig()
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	if len(cfg.Platforms) != 3 {
		t.Errorf("Platforms = %d, want 3", len(cfg.Platforms))
	}
}
