package society

import (
	"context"
	"strings"
	"sync"
)

// truncationNote is appended to the last worker message when the
// round limiter, not the agents, ended the conversation.
const truncationNote = "\n\n[Note: This conversation was truncated after reaching the round limit.]"

// RoundLimiter guarantees a session never exceeds a configured round
// budget, even when the agents never emit the sentinel. It owns the
// society's original step function between Acquire and Release and
// keeps its own round counter, independent of the run loop's.
//
// The round that reaches the limit still executes; the limiter then
// injects the sentinel into the driver's message and marks the
// response terminated, so no work is wasted on a hard cutoff.
type RoundLimiter struct {
	society  *Society
	limit    int
	progress ProgressFunc

	mu       sync.Mutex
	rounds   int
	forced   bool
	acquired bool
	original StepFunc
}

// NewRoundLimiter creates a limiter for the given society. A missing
// society or a non-positive limit is a fatal configuration error.
func NewRoundLimiter(s *Society, roundLimit int, progress ProgressFunc) (*RoundLimiter, error) {
	if s == nil {
		return nil, &ConfigurationError{Field: "society", Reason: "must not be nil"}
	}
	if roundLimit < 1 {
		return nil, &ConfigurationError{Field: "round_limit", Reason: "must be at least 1"}
	}

	return &RoundLimiter{
		society:  s,
		limit:    roundLimit,
		progress: progress,
	}, nil
}

// Acquire installs the limited step function on the society. It fails
// with a configuration error when the society has no step capability.
func (l *RoundLimiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.acquired {
		return &ConfigurationError{Field: "round_limiter", Reason: "already acquired"}
	}

	original, err := l.society.swapStep(l.limitedStep)
	if err != nil {
		return err
	}

	l.original = original
	l.acquired = true
	return nil
}

// Release restores the society's original step function. It is safe
// to call more than once and must run whether the session succeeded
// or failed.
func (l *RoundLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.acquired {
		return
	}
	l.society.restoreStep(l.original)
	l.original = nil
	l.acquired = false
}

// Rounds returns how many rounds the limiter has counted.
func (l *RoundLimiter) Rounds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rounds
}

// ForcedStop reports whether the limiter injected the sentinel.
func (l *RoundLimiter) ForcedStop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.forced
}

func (l *RoundLimiter) limitedStep(ctx context.Context, input Message) (Response, Response, error) {
	l.mu.Lock()
	l.rounds++
	round := l.rounds
	original := l.original
	l.mu.Unlock()

	if l.progress != nil {
		l.progress(round, l.limit)
	}

	driver, worker, err := original(ctx, input)
	if err != nil {
		return driver, worker, err
	}

	if round >= l.limit {
		// Soft kill: the round's work is kept, the driver response is
		// rewritten so every downstream detector fires.
		if !driver.Empty() && !driver.Terminated &&
			!strings.Contains(driver.Messages[0].Content, TaskDoneToken) {
			driver.Messages[0].Content += "\n\n" + TaskDoneToken
			l.mu.Lock()
			l.forced = true
			l.mu.Unlock()
			l.society.logger.Info().
				Int("round_limit", l.limit).
				Msg("round limit reached, forcibly terminating")
		}
		driver.Terminated = true
	}

	return driver, worker, nil
}
