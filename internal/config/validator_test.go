package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Driver.APIKey = "sk-test"
	cfg.Worker.APIKey = "sk-ant-test"
	return cfg
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, v.Validate(validConfig()))
	})

	t.Run("rejects nil", func(t *testing.T) {
		assert.Error(t, v.Validate(nil))
	})

	t.Run("rejects non-positive round limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task.RoundLimit = 0
		err := v.Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "round_limit")
	})

	t.Run("rejects bad driver section", func(t *testing.T) {
		cfg := validConfig()
		cfg.Driver.Model = ""
		err := v.Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "driver")
	})

	t.Run("rejects bad worker section", func(t *testing.T) {
		cfg := validConfig()
		cfg.Worker.APIKey = ""
		err := v.Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker")
	})
}

func TestValidateAgent(t *testing.T) {
	v := NewValidator()

	base := AgentConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		Temperature: 0.3,
		MaxTokens:   4096,
	}

	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr string
	}{
		{"valid", func(c *AgentConfig) {}, ""},
		{"empty provider", func(c *AgentConfig) { c.Provider = "" }, "provider"},
		{"unsupported provider", func(c *AgentConfig) { c.Provider = "cohere" }, "unsupported provider"},
		{"empty model", func(c *AgentConfig) { c.Model = "" }, "model"},
		{"temperature too high", func(c *AgentConfig) { c.Temperature = 1.5 }, "temperature"},
		{"negative max tokens", func(c *AgentConfig) { c.MaxTokens = -1 }, "max_tokens"},
		{"empty key", func(c *AgentConfig) { c.APIKey = "" }, "API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := v.ValidateAgent("driver", cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateAPIKey("sk-ant-abc123", "anthropic"))
	assert.NoError(t, v.ValidateAPIKey("sk-abc123", "openai"))
	assert.Error(t, v.ValidateAPIKey("sk-abc123", "anthropic"))
	assert.Error(t, v.ValidateAPIKey("abc123", "openai"))
	assert.Error(t, v.ValidateAPIKey("", "anthropic"))
}
