package agent

import (
	"context"
	"fmt"
)

// LLMProvider is an interface for LLM API providers.
type LLMProvider interface {
	// Call makes an LLM API call.
	Call(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name.
	Provider() string
}

// LLMRequest contains the request parameters for an LLM call.
type LLMRequest struct {
	Model        string
	Messages     []ChatMessage
	Tools        []ToolSchema
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// ToolSchema describes a tool exposed to the model.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// LLMResponse contains the response from an LLM call.
type LLMResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// NewProvider creates an LLM provider for the named backend.
func NewProvider(name, apiKey string) (LLMProvider, error) {
	switch name {
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
