// Package society runs a driver agent and a worker agent through a
// round-limited instruction/execution dialogue until the task is done.
//
// Invariants:
// - System messages are immutable after construction.
// - The task prompt may be overridden at most once, before round 0.
// - Chat history is appended to exclusively by the run loop.
// - A session never exceeds its round limit, sentinel or not.
//
// Usage:
//
//	soc, _ := society.New(society.Config{
//		TaskPrompt: "find the answer",
//		Driver:     driverAgent,
//		Worker:     workerAgent,
//	})
//	answer, history, usage, _ := society.RunSocietyWithStrictLimit(ctx, soc, 15, nil)
//	_, _, _ = answer, history, usage
package society
