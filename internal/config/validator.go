package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a full configuration. Any failure here is fatal;
// the engine never retries configuration errors.
func (v *Validator) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Task.RoundLimit < 1 {
		return fmt.Errorf("task round_limit must be at least 1")
	}

	if err := v.ValidateAgent("driver", cfg.Driver); err != nil {
		return err
	}
	if err := v.ValidateAgent("worker", cfg.Worker); err != nil {
		return err
	}

	return nil
}

// ValidateAgent checks a single agent section. Temperature is bounded
// to 0..1 for every provider, even though OpenAI accepts up to 2: the
// two agents share one config surface and values above 1 make the
// driver's instructions erratic.
func (v *Validator) ValidateAgent(name string, cfg AgentConfig) error {
	if cfg.Provider == "" {
		return fmt.Errorf("%s: provider cannot be empty", name)
	}
	if cfg.Provider != "anthropic" && cfg.Provider != "openai" {
		return fmt.Errorf("%s: unsupported provider %q", name, cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("%s: model cannot be empty", name)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return fmt.Errorf("%s: temperature must be between 0 and 1", name)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("%s: max_tokens cannot be negative", name)
	}
	if err := v.ValidateAPIKey(cfg.APIKey, cfg.Provider); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ValidateAPIKey validates an API key format.
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case "anthropic":
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}
