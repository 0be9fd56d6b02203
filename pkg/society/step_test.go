package society

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProtocolStep(t *testing.T) {
	ctx := context.Background()

	t.Run("augments instruction with auxiliary context", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: list the rivers")}}
		worker := &fakeAgent{role: "worker", responses: []Response{textResponse("worker", "Solution: Nile, Amazon")}}
		s := newTestSociety(t, driver, worker)

		_, _, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}

		got := worker.received[0].Content
		if !strings.HasPrefix(got, "Instruction: list the rivers") {
			t.Errorf("instruction prefix lost: %q", got)
		}
		if !strings.Contains(got, "<auxiliary_information>") {
			t.Error("worker input should carry auxiliary context")
		}
		if !strings.Contains(got, "count the rivers") {
			t.Error("auxiliary context should embed the task")
		}
	})

	t.Run("driver message in the result is never mutated", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: list the rivers")}}
		worker := &fakeAgent{role: "worker", responses: []Response{textResponse("worker", "Solution: Nile")}}
		s := newTestSociety(t, driver, worker)

		driverOut, _, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if driverOut.Msg().Content != "Instruction: list the rivers" {
			t.Errorf("driver output carries augmentation: %q", driverOut.Msg().Content)
		}
	})

	t.Run("driver sentinel requests final answer and keeps reply raw", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", TaskDoneToken)}}
		worker := &fakeAgent{role: "worker", responses: []Response{textResponse("worker", "The answer is three rivers.")}}
		s := newTestSociety(t, driver, worker)

		_, workerOut, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}

		if !strings.Contains(worker.received[0].Content, "final answer of the original task") {
			t.Error("worker should be asked for a final answer after the driver's sentinel")
		}
		if workerOut.Msg().Content != "The answer is three rivers." {
			t.Errorf("final answer must be left untouched, got %q", workerOut.Msg().Content)
		}
	})

	t.Run("worker sentinel gets final answer request appended", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: wrap up")}}
		worker := &fakeAgent{role: "worker", responses: []Response{textResponse("worker", "Solution: done. " + TaskDoneToken)}}
		s := newTestSociety(t, driver, worker)

		_, workerOut, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if !strings.Contains(workerOut.Msg().Content, "final answer of the original task") {
			t.Errorf("worker sentinel should trigger a final answer request, got %q", workerOut.Msg().Content)
		}
	})

	t.Run("default appends next instruction request", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: go")}}
		worker := &fakeAgent{role: "worker", responses: []Response{textResponse("worker", "Solution: partial")}}
		s := newTestSociety(t, driver, worker)

		_, workerOut, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		got := workerOut.Msg().Content
		if !strings.HasPrefix(got, "Solution: partial") {
			t.Errorf("worker text prefix lost: %q", got)
		}
		if !strings.Contains(got, "next instruction") {
			t.Errorf("next instruction request missing: %q", got)
		}
	})

	t.Run("terminated driver short-circuits without calling the worker", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{{Terminated: true, Usage: &Usage{PromptTokens: 3}}}}
		worker := &fakeAgent{role: "worker"}
		s := newTestSociety(t, driver, worker)

		driverOut, workerOut, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if !driverOut.Terminated {
			t.Error("termination flag should survive the short-circuit")
		}
		if driverOut.Usage == nil || driverOut.Usage.PromptTokens != 3 {
			t.Error("usage should survive the short-circuit")
		}
		if !workerOut.Empty() {
			t.Error("worker response should be empty")
		}
		if len(worker.received) != 0 {
			t.Error("worker must not be called after a driver short-circuit")
		}
	})

	t.Run("empty driver response short-circuits", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{{}}}
		worker := &fakeAgent{role: "worker"}
		s := newTestSociety(t, driver, worker)

		driverOut, _, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if driverOut.Terminated {
			t.Error("empty response is a clean stop, not a termination")
		}
		if len(worker.received) != 0 {
			t.Error("worker must not be called after an empty driver response")
		}
	})

	t.Run("terminated worker short-circuits keeping the driver response", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: go")}}
		worker := &fakeAgent{role: "worker", responses: []Response{{Terminated: true}}}
		s := newTestSociety(t, driver, worker)

		driverOut, workerOut, err := s.Step(ctx, s.InitChat(""))
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if driverOut.Msg().Content != "Instruction: go" {
			t.Error("driver response should be returned intact")
		}
		if !workerOut.Terminated || !workerOut.Empty() {
			t.Error("worker short-circuit should report termination with no message")
		}
	})

	t.Run("driver error is wrapped with the role", func(t *testing.T) {
		cause := errors.New("api unavailable")
		driver := &fakeAgent{role: "driver", err: cause}
		s := newTestSociety(t, driver, &fakeAgent{role: "worker"})

		_, _, err := s.Step(ctx, s.InitChat(""))

		var callErr *AgentCallError
		if !errors.As(err, &callErr) {
			t.Fatalf("expected AgentCallError, got %v", err)
		}
		if callErr.Role != "driver" {
			t.Errorf("expected driver role, got %q", callErr.Role)
		}
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable via errors.Is")
		}
	})

	t.Run("worker error is wrapped with the role", func(t *testing.T) {
		driver := &fakeAgent{role: "driver", responses: []Response{textResponse("driver", "Instruction: go")}}
		worker := &fakeAgent{role: "worker", err: errors.New("rate limited")}
		s := newTestSociety(t, driver, worker)

		_, _, err := s.Step(ctx, s.InitChat(""))

		var callErr *AgentCallError
		if !errors.As(err, &callErr) {
			t.Fatalf("expected AgentCallError, got %v", err)
		}
		if callErr.Role != "worker" {
			t.Errorf("expected worker role, got %q", callErr.Role)
		}
	})
}
