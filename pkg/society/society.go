package society

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Society holds the task, the two agents and their behavioral
// contracts: the driver only instructs, the worker only executes.
type Society struct {
	driverRole          string
	workerRole          string
	driverSystemMessage string
	workerSystemMessage string

	driver ConversationAgent
	worker ConversationAgent
	logger zerolog.Logger

	mu             sync.Mutex
	taskPrompt     string
	taskOverridden bool
	started        bool
	terminated     bool
	step           StepFunc
}

// Config holds society construction parameters.
type Config struct {
	TaskPrompt string
	DriverRole string // defaults to "driver"
	WorkerRole string // defaults to "worker"
	Driver     ConversationAgent
	Worker     ConversationAgent
	Logger     zerolog.Logger
}

// New creates a society and builds the immutable system messages for
// both agents from the task prompt.
func New(cfg Config) (*Society, error) {
	if cfg.TaskPrompt == "" {
		return nil, &ConfigurationError{Field: "task_prompt", Reason: "must not be empty"}
	}
	if cfg.Driver == nil {
		return nil, &ConfigurationError{Field: "driver", Reason: "agent is required"}
	}
	if cfg.Worker == nil {
		return nil, &ConfigurationError{Field: "worker", Reason: "agent is required"}
	}

	driverRole := cfg.DriverRole
	if driverRole == "" {
		driverRole = "driver"
	}
	workerRole := cfg.WorkerRole
	if workerRole == "" {
		workerRole = "worker"
	}

	s := &Society{
		driverRole:          driverRole,
		workerRole:          workerRole,
		driverSystemMessage: driverSystemMessage(cfg.TaskPrompt),
		workerSystemMessage: workerSystemMessage(cfg.TaskPrompt),
		taskPrompt:          cfg.TaskPrompt,
		driver:              cfg.Driver,
		worker:              cfg.Worker,
		logger:              cfg.Logger,
	}
	s.step = s.protocolStep

	return s, nil
}

// InitChat produces the message that starts round 0. An empty seed
// falls back to DefaultSeedPrompt.
func (s *Society) InitChat(seed string) Message {
	if seed == "" {
		seed = DefaultSeedPrompt
	}
	return Message{Role: s.workerRole, Content: seed}
}

// OverrideTask replaces the task prompt, typically with an enhanced
// version of the user's original request. It is allowed exactly once
// and only before the first round; the system messages built at
// construction are not rewritten.
func (s *Society) OverrideTask(taskPrompt string) error {
	if taskPrompt == "" {
		return &ConfigurationError{Field: "task_prompt", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return &ConfigurationError{Field: "task_prompt", Reason: "cannot be overridden after the first round"}
	}
	if s.taskOverridden {
		return &ConfigurationError{Field: "task_prompt", Reason: "already overridden once"}
	}

	s.taskPrompt = taskPrompt
	s.taskOverridden = true
	return nil
}

// TaskPrompt returns the current task prompt.
func (s *Society) TaskPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskPrompt
}

// DriverRole returns the driver's role name.
func (s *Society) DriverRole() string { return s.driverRole }

// WorkerRole returns the worker's role name.
func (s *Society) WorkerRole() string { return s.workerRole }

// DriverSystemMessage returns the driver's immutable contract.
func (s *Society) DriverSystemMessage() string { return s.driverSystemMessage }

// WorkerSystemMessage returns the worker's immutable contract.
func (s *Society) WorkerSystemMessage() string { return s.workerSystemMessage }

// Terminated reports whether a run on this society has ended.
func (s *Society) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// Step executes one driver→worker exchange via the currently
// installed step function.
func (s *Society) Step(ctx context.Context, input Message) (Response, Response, error) {
	s.mu.Lock()
	s.started = true
	fn := s.step
	s.mu.Unlock()

	if fn == nil {
		return Response{}, Response{}, &ConfigurationError{Field: "step", Reason: "society has no step function"}
	}
	return fn(ctx, input)
}

func (s *Society) markTerminated() {
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
}

// swapStep installs fn as the step function and returns the previous
// one so the caller can restore it later.
func (s *Society) swapStep(fn StepFunc) (StepFunc, error) {
	if fn == nil {
		return nil, &ConfigurationError{Field: "step", Reason: "replacement step function must not be nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == nil {
		return nil, &ConfigurationError{Field: "step", Reason: "society has no step function"}
	}

	prev := s.step
	s.step = fn
	return prev, nil
}

// restoreStep reinstalls a previously swapped-out step function.
func (s *Society) restoreStep(fn StepFunc) {
	s.mu.Lock()
	s.step = fn
	s.mu.Unlock()
}
