package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Config describes one experiment.
type Config struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	MaxCommits int    `json:"max_commits"`
	MaxTokens  int    `json:"max_tokens"`
}

// Defaults applied to partially specified configurations.
const (
	DefaultMaxCommits = 10
	DefaultMaxTokens  = 300
)

// Quick is a single small run for smoke-testing a setup.
func Quick() []Config {
	return []Config{{Name: "Quick Test", Model: "gpt-3.5-turbo", MaxCommits: 5, MaxTokens: 200}}
}

// Defaults compares the two stock OpenAI models.
func Defaults(maxCommits int) []Config {
	return []Config{
		{Name: "GPT-3.5 Turbo", Model: "gpt-3.5-turbo", MaxCommits: maxCommits, MaxTokens: DefaultMaxTokens},
		{Name: "GPT-4", Model: "gpt-4", MaxCommits: maxCommits, MaxTokens: DefaultMaxTokens},
	}
}

// ForModels builds one experiment per model.
func ForModels(models []string, maxCommits int) []Config {
	var cfgs []Config
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		cfgs = append(cfgs, Config{Name: "Test: " + m, Model: m, MaxCommits: maxCommits, MaxTokens: DefaultMaxTokens})
	}
	return cfgs
}

// ParseCustom reads a single experiment from JSON. Only model is required.
func ParseCustom(data string) (Config, error) {
	cfg := Config{Name: "Custom", MaxCommits: DefaultMaxCommits, MaxTokens: DefaultMaxTokens}
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing custom experiment: %w", err)
	}
	if cfg.Model == "" {
		return Config{}, errors.New("custom experiment: model is required")
	}
	if cfg.MaxCommits <= 0 || cfg.MaxTokens <= 0 {
		return Config{}, errors.New("custom experiment: max_commits and max_tokens must be positive")
	}
	return cfg, nil
}
