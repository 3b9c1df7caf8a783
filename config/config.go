// Package config loads runtime configuration and the scrape target table.
// Targets come from a builtin table covering the known clinic sites; a YAML
// config file can override builtin entries by key or add new ones.
package config

import (
	"fmt"

	"github.com/clinscrape/clinscrape"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime settings, populated from the environment and an
// optional YAML file.
type Config struct {
	// Provider selects the LLM vendor: "gemini" or "anthropic".
	Provider string `yaml:"provider" env:"CLINSCRAPE_PROVIDER" env-default:"gemini"`

	// Model overrides the provider's default model when set.
	Model string `yaml:"model" env:"CLINSCRAPE_MODEL"`

	GeminiAPIKey    string `yaml:"-" env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`

	DBPath      string `yaml:"db_path" env:"CLINSCRAPE_DB"`
	SnapshotDir string `yaml:"snapshot_dir" env:"CLINSCRAPE_SNAPSHOTS"`

	Concurrency int `yaml:"concurrency" env:"CLINSCRAPE_CONCURRENCY" env-default:"4"`

	// RequestsPerMinute throttles LLM calls across the whole run.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"CLINSCRAPE_RPM" env-default:"15"`

	// Targets from the config file, merged over the builtin table by key.
	Targets []clinscrape.Target `yaml:"targets"`

	targets []*clinscrape.Target
}

// Load reads configuration from the environment and, when path is non-empty,
// from a YAML file. File targets override builtin targets with the same key.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	switch cfg.Provider {
	case "gemini", "anthropic":
	default:
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "unknown provider %q", cfg.Provider)
	}

	cfg.targets = mergeTargets(BuiltinTargets(), cfg.Targets)
	for _, t := range cfg.targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// mergeTargets overlays file targets on the builtin table, keyed by target
// key, keeping builtin order and appending new keys at the end.
func mergeTargets(builtin []*clinscrape.Target, extra []clinscrape.Target) []*clinscrape.Target {
	merged := make([]*clinscrape.Target, len(builtin))
	index := make(map[string]int, len(builtin))
	for i, t := range builtin {
		merged[i] = t
		index[t.Key] = i
	}
	for i := range extra {
		t := &extra[i]
		if pos, ok := index[t.Key]; ok {
			merged[pos] = t
			continue
		}
		index[t.Key] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

// AllTargets returns the merged target table in stable order.
func (c *Config) AllTargets() []*clinscrape.Target {
	return c.targets
}

// Target returns the target with the given key.
// Returns ENOTFOUND if no such target exists.
func (c *Config) Target(key string) (*clinscrape.Target, error) {
	for _, t := range c.targets {
		if t.Key == key {
			return t, nil
		}
	}
	return nil, clinscrape.Errorf(clinscrape.ENOTFOUND, "unknown target %q", key)
}

// APIKey returns the API key for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}
