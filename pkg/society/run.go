package society

import (
	"context"
	"strings"

	"github.com/harun/tandem/internal/observability"
)

// Result bundles the outputs of an asynchronous run.
type Result struct {
	Answer  string
	History []Round
	Usage   TokenUsage
	Err     error
}

// RunSociety drives the dialogue for at most roundLimit rounds and
// returns the final answer, the chat history and the aggregate token
// usage.
//
// The loop stops as soon as any of three redundant signals fires: the
// driver terminated, the worker terminated, or the sentinel literal
// appears in the driver's raw message. Exhausting the round budget
// without a signal simply ends the loop; the last worker text is
// returned best-effort. Errors from either agent propagate uncaught.
func RunSociety(ctx context.Context, s *Society, roundLimit int) (string, []Round, TokenUsage, error) {
	observability.EnsureRegistered()

	var usage TokenUsage
	history := []Round{}

	if s == nil {
		return "", history, usage, &ConfigurationError{Field: "society", Reason: "must not be nil"}
	}
	if roundLimit < 1 {
		return "", history, usage, &ConfigurationError{Field: "round_limit", Reason: "must be at least 1"}
	}

	outcome := OutcomeExhausted
	input := s.InitChat("")

	for round := 0; round < roundLimit; round++ {
		driver, worker, err := s.Step(ctx, input)
		if err != nil {
			return "", history, usage, err
		}

		usage.Add(driver.Usage)
		usage.Add(worker.Usage)
		observability.RecordRound()

		// An agent returning no message is a clean stop, not an error;
		// nothing is recorded for the aborted round.
		if driver.Empty() || worker.Empty() {
			outcome = OutcomeEmpty
			if driver.Terminated || worker.Terminated {
				outcome = OutcomeNatural
			}
			s.logger.Info().
				Int("round", round).
				Str("outcome", string(outcome)).
				Msg("round produced no message, stopping")
			break
		}

		driverText := driver.Msg().Content
		workerText := worker.Msg().Content

		toolCalls := worker.ToolCalls
		if toolCalls == nil {
			toolCalls = []ToolCallRecord{}
		}

		history = append(history, Round{
			Index:      round,
			DriverText: driverText,
			WorkerText: workerText,
			ToolCalls:  toolCalls,
		})

		s.logger.Info().
			Int("round", round).
			Int("tool_calls", len(toolCalls)).
			Msg("round completed")
		s.logger.Debug().
			Int("round", round).
			Str("driver", driverText).
			Str("worker", workerText).
			Msg("round transcript")

		sentinel := strings.Contains(driverText, TaskDoneToken)
		if driver.Terminated || worker.Terminated || sentinel {
			// The structured flags are the primary signal; the
			// substring scan is the fallback for agents that announce
			// completion in text only.
			if sentinel && !driver.Terminated && !worker.Terminated {
				observability.RecordSentinelFallback()
				s.logger.Warn().
					Int("round", round).
					Msg("termination detected by sentinel substring only")
			}
			outcome = OutcomeNatural
			break
		}

		input = worker.Msg()
	}

	s.markTerminated()
	observability.RecordRunOutcome(string(outcome))
	observability.AddTokens(usage.PromptTokenCount, usage.CompletionTokenCount)

	answer := ""
	if len(history) > 0 {
		answer = history[len(history)-1].WorkerText
	}

	return answer, history, usage, nil
}

// RunSocietyWithStrictLimit wraps RunSociety with a RoundLimiter so
// the round budget holds even when the agents never emit the
// sentinel. When the limiter forced the stop, the final round is
// flagged and annotated with a truncation note so callers can tell a
// forced stop from a natural one. The society's original step
// function is restored unconditionally.
func RunSocietyWithStrictLimit(ctx context.Context, s *Society, roundLimit int, progress ProgressFunc) (string, []Round, TokenUsage, error) {
	limiter, err := NewRoundLimiter(s, roundLimit, progress)
	if err != nil {
		return "", []Round{}, TokenUsage{}, err
	}
	if err := limiter.Acquire(); err != nil {
		return "", []Round{}, TokenUsage{}, err
	}
	defer limiter.Release()

	answer, history, usage, err := RunSociety(ctx, s, roundLimit)
	if err != nil {
		return answer, history, usage, err
	}

	if limiter.ForcedStop() && len(history) > 0 {
		last := len(history) - 1
		if !history[last].Truncated {
			history[last].Truncated = true
			history[last].WorkerText += truncationNote
			answer = history[last].WorkerText
		}
		observability.RecordForcedStop()
		s.logger.Info().
			Int("rounds", limiter.Rounds()).
			Msg("run truncated by round limiter")
	}

	return answer, history, usage, nil
}

// RunSocietyAsync runs the society on a separate goroutine and
// delivers the single result on the returned channel. Rounds remain
// strictly sequential inside the run; this only keeps the host
// goroutine unblocked while LLM calls are outstanding.
func RunSocietyAsync(ctx context.Context, s *Society, roundLimit int) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		answer, history, usage, err := RunSociety(ctx, s, roundLimit)
		out <- Result{Answer: answer, History: history, Usage: usage, Err: err}
	}()
	return out
}
