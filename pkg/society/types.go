package society

import "context"

// Message is a single utterance exchanged between the two agents.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCallRecord is the plain {name, arguments} form of a tool
// invocation reported by an agent.
type ToolCallRecord struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Usage reports token consumption for a single agent call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Response is the typed result of one agent step. Every agent adapter
// must satisfy this shape; the engine never probes for optional
// fields beyond the nil checks below.
type Response struct {
	Messages   []Message        `json:"messages"`
	Terminated bool             `json:"terminated"`
	Usage      *Usage           `json:"usage,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
}

// Msg returns the first message or a zero Message when the response
// is empty.
func (r Response) Msg() Message {
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[0]
}

// Empty reports whether the response carries no message.
func (r Response) Empty() bool {
	return len(r.Messages) == 0
}

// ConversationAgent is the contract the engine consumes. Given a
// message it returns a response, optionally after calling tools, and
// reports termination and usage.
type ConversationAgent interface {
	Step(ctx context.Context, msg Message) (Response, error)
}

// Round is one completed driver→worker exchange. Rounds are
// append-only; the JSON field names match the exported chat history
// contract ({user, assistant, tool_calls}).
type Round struct {
	Index      int              `json:"index"`
	DriverText string           `json:"user"`
	WorkerText string           `json:"assistant"`
	ToolCalls  []ToolCallRecord `json:"tool_calls"`
	Truncated  bool             `json:"truncated_note,omitempty"`
}

// TokenUsage aggregates token counts across a whole run. Counters are
// monotonically non-decreasing; calls without usage info leave them
// unchanged.
type TokenUsage struct {
	CompletionTokenCount int `json:"completion_token_count"`
	PromptTokenCount     int `json:"prompt_token_count"`
}

// Add accumulates one call's usage. A nil usage is tolerated.
func (t *TokenUsage) Add(u *Usage) {
	if u == nil {
		return
	}
	t.PromptTokenCount += u.PromptTokens
	t.CompletionTokenCount += u.CompletionTokens
}

// Outcome labels how a run ended.
type Outcome string

const (
	// OutcomeNatural means an agent terminated or the sentinel appeared.
	OutcomeNatural Outcome = "natural"
	// OutcomeForced means the round limiter injected the sentinel.
	OutcomeForced Outcome = "forced"
	// OutcomeEmpty means an agent returned no message.
	OutcomeEmpty Outcome = "empty"
	// OutcomeExhausted means the loop ran out of rounds without any
	// termination signal.
	OutcomeExhausted Outcome = "exhausted"
)

// StepFunc executes one driver→worker exchange.
type StepFunc func(ctx context.Context, input Message) (driver Response, worker Response, err error)

// ProgressFunc is invoked once per executed round, with the 1-based
// current round and the configured limit.
type ProgressFunc func(currentRound, roundLimit int)
