package agent

import "strings"

// Config configures a single conversation agent.
type Config struct {
	Provider    string   `json:"provider"` // "anthropic" or "openai"
	APIKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	MaxRetries  int      `json:"max_retries,omitempty"`
	Tools       []string `json:"tools,omitempty"`
}

// ChatMessage is one entry in an agent's conversation history.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall describes a tool invocation requested by the model.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// TokenUsage tracks token consumption for a single call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// DefaultConfig returns default agent configuration.
func DefaultConfig() Config {
	return Config{
		Provider:    "anthropic",
		Model:       "claude-3-5-sonnet-20241022",
		Temperature: 0.7,
		MaxTokens:   4096,
		MaxRetries:  3,
	}
}

// IsRetryableError reports whether an error is worth retrying:
// network resets, rate limits and 5xx server errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	for _, marker := range []string{
		"ECONNRESET", "ETIMEDOUT", "connection reset",
		"429", "rate limit",
		"500", "502", "503", "504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
