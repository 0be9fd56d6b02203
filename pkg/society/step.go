package society

import (
	"context"
	"strings"
)

// protocolStep runs one complete exchange:
//
//  1. The input message goes to the driver. A terminated or empty
//     driver response short-circuits without touching the worker.
//  2. The driver's instruction is augmented on a copy with the
//     overall task as auxiliary context, or with a final-answer
//     request once the driver has emitted the sentinel.
//  3. The augmented instruction goes to the worker, with an analogous
//     short-circuit.
//  4. The worker's reply is extended, again on a copy, with the
//     request that shapes the driver's next prompt: either the next
//     instruction plus a verification reminder, or a final-answer
//     request when the worker already emitted the sentinel.
func (s *Society) protocolStep(ctx context.Context, input Message) (Response, Response, error) {
	driverResp, err := s.driver.Step(ctx, input)
	if err != nil {
		return Response{}, Response{}, &AgentCallError{Role: s.driverRole, Err: err}
	}
	if driverResp.Terminated || driverResp.Empty() {
		s.logger.Debug().
			Bool("terminated", driverResp.Terminated).
			Msg("driver short-circuited the round")
		return Response{
			Terminated: driverResp.Terminated,
			Usage:      driverResp.Usage,
		}, Response{}, nil
	}

	driverMsg := driverResp.Msg()
	taskPrompt := s.TaskPrompt()

	// Augment a copy; the driver's own message is never mutated.
	instruction := driverMsg
	if strings.Contains(driverMsg.Content, TaskDoneToken) {
		instruction.Content += finalAnswerRequest(taskPrompt)
	} else {
		instruction.Content += auxiliaryContext(taskPrompt)
	}

	workerResp, err := s.worker.Step(ctx, instruction)
	if err != nil {
		return driverResp, Response{}, &AgentCallError{Role: s.workerRole, Err: err}
	}
	if workerResp.Terminated || workerResp.Empty() {
		s.logger.Debug().
			Bool("terminated", workerResp.Terminated).
			Msg("worker short-circuited the round")
		return driverResp, Response{
			Terminated: workerResp.Terminated,
			Usage:      workerResp.Usage,
			ToolCalls:  workerResp.ToolCalls,
		}, nil
	}

	// Build the driver's next prompt, again on a copy. Once the driver
	// has declared completion the worker's reply is the final answer
	// and must be left untouched.
	workerMsg := workerResp.Msg()
	reply := workerMsg
	switch {
	case strings.Contains(driverMsg.Content, TaskDoneToken):
		// Terminal round; the loop stops after this exchange.
	case strings.Contains(workerMsg.Content, TaskDoneToken):
		reply.Content += finalAnswerRequest(taskPrompt)
	default:
		reply.Content += nextInstructionRequest(taskPrompt)
	}

	driverOut := Response{
		Messages:   []Message{driverMsg},
		Terminated: driverResp.Terminated,
		Usage:      driverResp.Usage,
		ToolCalls:  driverResp.ToolCalls,
	}
	workerOut := Response{
		Messages:   []Message{reply},
		Terminated: workerResp.Terminated,
		Usage:      workerResp.Usage,
		ToolCalls:  workerResp.ToolCalls,
	}

	return driverOut, workerOut, nil
}
