// Package agent provides LLM-backed conversation agents for the
// society engine: per-agent message history, provider adapters over
// the official Anthropic and OpenAI SDKs, retry with backoff, and a
// bounded tool loop.
//
// Invariants:
// - The system prompt is fixed at construction.
// - Tool calls route through the injected tooling registry only.
// - Non-retryable provider errors propagate to the caller.
package agent
