package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main tandem configuration.
type Config struct {
	// Task defaults
	Task TaskConfig `json:"task" mapstructure:"task"`

	// The two agents
	Driver AgentConfig `json:"driver" mapstructure:"driver"`
	Worker AgentConfig `json:"worker" mapstructure:"worker"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Transcript output
	Output OutputConfig `json:"output" mapstructure:"output"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// TaskConfig holds task execution defaults.
type TaskConfig struct {
	RoundLimit int    `json:"round_limit" mapstructure:"round_limit"`
	SeedPrompt string `json:"seed_prompt" mapstructure:"seed_prompt"`
}

// AgentConfig configures one of the two agents.
type AgentConfig struct {
	Provider    string   `json:"provider" mapstructure:"provider"` // anthropic, openai
	APIKey      string   `json:"api_key" mapstructure:"api_key"`
	Model       string   `json:"model" mapstructure:"model"`
	Temperature float64  `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int      `json:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries  int      `json:"max_retries" mapstructure:"max_retries"`
	Tools       []string `json:"tools" mapstructure:"tools"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// OutputConfig controls transcript export.
type OutputConfig struct {
	Dir      string `json:"dir" mapstructure:"dir"`
	JSON     bool   `json:"json" mapstructure:"json"`
	Markdown bool   `json:"markdown" mapstructure:"markdown"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Listen  string `json:"listen" mapstructure:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Task: TaskConfig{
			RoundLimit: 15,
		},
		Driver: AgentConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0,
			MaxTokens:   4096,
			MaxRetries:  3,
		},
		Worker: AgentConfig{
			Provider:    "anthropic",
			Model:       "claude-3-5-sonnet-20241022",
			Temperature: 0,
			MaxTokens:   4096,
			MaxRetries:  3,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
		Output: OutputConfig{
			JSON:     true,
			Markdown: true,
		},
		Metrics: MetricsConfig{
			Listen: "127.0.0.1:9191",
		},
	}
}

// String returns the configuration as JSON with API keys masked.
func (c *Config) String() string {
	masked := *c
	if masked.Driver.APIKey != "" {
		masked.Driver.APIKey = "****"
	}
	if masked.Worker.APIKey != "" {
		masked.Worker.APIKey = "****"
	}

	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("config marshal error: %v", err)
	}
	return string(data)
}
