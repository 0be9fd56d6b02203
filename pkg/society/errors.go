package society

import "fmt"

// ConfigurationError reports missing or invalid setup. It is fatal
// and never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// AgentCallError wraps a failure from an underlying agent step. The
// engine performs no retries; these propagate to the caller.
type AgentCallError struct {
	Role string
	Err  error
}

func (e *AgentCallError) Error() string {
	return fmt.Sprintf("%s agent call failed: %v", e.Role, e.Err)
}

func (e *AgentCallError) Unwrap() error {
	return e.Err
}
