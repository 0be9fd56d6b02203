package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	roundsTotal      prometheus.Counter
	runsTotal        *prometheus.CounterVec
	forcedStopsTotal prometheus.Counter
	sentinelFallback prometheus.Counter

	promptTokensTotal     prometheus.Counter
	completionTokensTotal prometheus.Counter

	agentCallTotal    *prometheus.CounterVec
	agentCallDuration *prometheus.HistogramVec
	agentErrorsTotal  *prometheus.CounterVec

	toolExecutionTotal    *prometheus.CounterVec
	toolExecutionDuration *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			roundsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "society_rounds_total",
					Help: "Total driver/worker exchange rounds executed.",
				},
			),
			runsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "society_runs_total",
					Help: "Total society runs by outcome.",
				},
				[]string{"outcome"},
			),
			forcedStopsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "society_forced_stops_total",
					Help: "Total runs terminated by the round limiter.",
				},
			),
			sentinelFallback: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "society_sentinel_fallback_total",
					Help: "Rounds where only the sentinel substring signaled termination.",
				},
			),
			promptTokensTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "society_prompt_tokens_total",
					Help: "Total prompt tokens consumed across both agents.",
				},
			),
			completionTokensTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "society_completion_tokens_total",
					Help: "Total completion tokens consumed across both agents.",
				},
			),
			agentCallTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agent_call_total",
					Help: "Total agent LLM calls by provider and status.",
				},
				[]string{"provider", "status"},
			),
			agentCallDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agent_call_duration_seconds",
					Help:    "Agent LLM call duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			agentErrorsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agent_errors_total",
					Help: "Total agent call errors by provider.",
				},
				[]string{"provider"},
			),
			toolExecutionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_execution_total",
					Help: "Total tool executions by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolExecutionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_execution_duration_seconds",
					Help:    "Tool execution duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
		}

		prometheus.MustRegister(
			m.roundsTotal,
			m.runsTotal,
			m.forcedStopsTotal,
			m.sentinelFallback,
			m.promptTokensTotal,
			m.completionTokensTotal,
			m.agentCallTotal,
			m.agentCallDuration,
			m.agentErrorsTotal,
			m.toolExecutionTotal,
			m.toolExecutionDuration,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

// MetricsHandler returns an HTTP handler serving the metrics endpoint.
func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

// RecordRound counts one executed driver/worker exchange.
func RecordRound() {
	getMetrics().roundsTotal.Inc()
}

// RecordRunOutcome counts a finished run by outcome label.
func RecordRunOutcome(outcome string) {
	getMetrics().runsTotal.WithLabelValues(outcome).Inc()
}

// RecordForcedStop counts a run terminated by the round limiter.
func RecordForcedStop() {
	getMetrics().forcedStopsTotal.Inc()
}

// RecordSentinelFallback counts a round where only the substring scan
// detected termination.
func RecordSentinelFallback() {
	getMetrics().sentinelFallback.Inc()
}

// AddTokens accumulates token usage for a run.
func AddTokens(promptTokens, completionTokens int) {
	m := getMetrics()
	m.promptTokensTotal.Add(float64(promptTokens))
	m.completionTokensTotal.Add(float64(completionTokens))
}

// RecordAgentCall records one LLM call with its duration and status.
func RecordAgentCall(provider string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.agentCallTotal.WithLabelValues(provider, status).Inc()
	m.agentCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if !success {
		m.agentErrorsTotal.WithLabelValues(provider).Inc()
	}
}

// RecordToolExecution records one tool invocation.
func RecordToolExecution(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.toolExecutionTotal.WithLabelValues(tool, status).Inc()
	m.toolExecutionDuration.WithLabelValues(tool).Observe(duration.Seconds())
}
