package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/tandem/internal/observability"
	"github.com/harun/tandem/pkg/society"
	"github.com/harun/tandem/pkg/tooling"
)

// maxToolTurns bounds the tool loop within a single step.
const maxToolTurns = 10

// ChatAgent is an LLM-backed conversation agent. It keeps its own
// message history across rounds and satisfies the society engine's
// ConversationAgent contract.
type ChatAgent struct {
	role         string
	systemPrompt string
	provider     LLMProvider
	cfg          Config
	registry     *tooling.Registry
	logger       zerolog.Logger

	mu       sync.Mutex
	messages []ChatMessage
}

// ChatAgentConfig holds ChatAgent construction parameters.
type ChatAgentConfig struct {
	Role         string
	SystemPrompt string
	Provider     LLMProvider
	Config       Config
	Registry     *tooling.Registry // optional; nil disables tools
	Logger       zerolog.Logger
}

// NewChatAgent creates a conversation agent.
func NewChatAgent(cfg ChatAgentConfig) (*ChatAgent, error) {
	observability.EnsureRegistered()

	if cfg.Role == "" {
		return nil, fmt.Errorf("role is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Config.Temperature < 0 || cfg.Config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if len(cfg.Config.Tools) > 0 && cfg.Registry == nil {
		return nil, fmt.Errorf("tools configured but no registry provided")
	}

	return &ChatAgent{
		role:         cfg.Role,
		systemPrompt: cfg.SystemPrompt,
		provider:     cfg.Provider,
		cfg:          cfg.Config,
		registry:     cfg.Registry,
		logger:       cfg.Logger.With().Str("role", cfg.Role).Logger(),
	}, nil
}

// Role returns the agent's role name.
func (a *ChatAgent) Role() string { return a.role }

// Reset clears the conversation history.
func (a *ChatAgent) Reset() {
	a.mu.Lock()
	a.messages = nil
	a.mu.Unlock()
}

// Step feeds one incoming message to the model and returns the typed
// response the engine consumes, running the bounded tool loop when
// the model requests tools.
func (a *ChatAgent) Step(ctx context.Context, msg society.Message) (society.Response, error) {
	a.mu.Lock()
	history := make([]ChatMessage, len(a.messages))
	copy(history, a.messages)
	a.mu.Unlock()

	current := append(history, ChatMessage{Role: "user", Content: msg.Content})
	tools := a.toolSchemas()

	usage := &society.Usage{}
	records := []society.ToolCallRecord{}
	sawUsage := false

	var final *LLMResponse

	for turn := 0; turn < maxToolTurns; turn++ {
		select {
		case <-ctx.Done():
			return society.Response{Terminated: true}, nil
		default:
		}

		response, err := a.callWithRetry(ctx, current, tools)
		if err != nil {
			return society.Response{}, err
		}

		if response.Usage != nil {
			sawUsage = true
			usage.PromptTokens += response.Usage.InputTokens
			usage.CompletionTokens += response.Usage.OutputTokens
		}

		if len(response.ToolCalls) == 0 {
			final = response
			break
		}

		current = append(current, ChatMessage{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, tc := range response.ToolCalls {
			records = append(records, society.ToolCallRecord{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})

			var output string
			if a.registry == nil {
				// The model requested a tool we never advertised.
				output = fmt.Sprintf("tool error: no tools available: %s", tc.Name)
			} else if result, err := a.registry.Execute(ctx, tc.Name, tc.Arguments); err != nil {
				output = fmt.Sprintf("tool error: %v", err)
			} else {
				output = result
			}
			current = append(current, ChatMessage{
				Role:       "tool",
				Content:    output,
				ToolCallID: tc.ID,
			})
		}
	}

	if final == nil {
		return society.Response{}, fmt.Errorf("maximum tool turns (%d) exceeded", maxToolTurns)
	}

	// A contentless reply is a degraded response; report a clean
	// terminated-empty rather than fabricating a message.
	if final.Content == "" {
		a.logger.Warn().Msg("model returned empty content")
		resp := society.Response{Terminated: true}
		if sawUsage {
			resp.Usage = usage
		}
		return resp, nil
	}

	a.mu.Lock()
	a.messages = append(current, ChatMessage{Role: "assistant", Content: final.Content})
	a.mu.Unlock()

	resp := society.Response{
		Messages:  []society.Message{{Role: a.role, Content: final.Content}},
		ToolCalls: records,
	}
	if sawUsage {
		resp.Usage = usage
	}
	return resp, nil
}

func (a *ChatAgent) toolSchemas() []ToolSchema {
	if a.registry == nil || len(a.cfg.Tools) == 0 {
		return nil
	}

	schemas := []ToolSchema{}
	for _, name := range a.cfg.Tools {
		def := a.registry.Get(name)
		if def == nil {
			a.logger.Warn().Str("tool", name).Msg("configured tool not registered, skipping")
			continue
		}
		schemas = append(schemas, ToolSchema{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return schemas
}

// callWithRetry calls the provider with exponential backoff on
// retryable errors.
func (a *ChatAgent) callWithRetry(ctx context.Context, messages []ChatMessage, tools []ToolSchema) (*LLMResponse, error) {
	maxRetries := a.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	request := LLMRequest{
		Model:        a.cfg.Model,
		Messages:     messages,
		Tools:        tools,
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
		SystemPrompt: a.systemPrompt,
	}

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		start := time.Now()
		response, err := a.provider.Call(ctx, request)
		observability.RecordAgentCall(a.provider.Provider(), time.Since(start), err == nil)
		if err == nil {
			return response, nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			return nil, err
		}
		if attempt == maxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s.
		delay := time.Duration(1<<attempt) * time.Second
		a.logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("retrying after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}
