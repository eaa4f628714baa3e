package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trip agent metrics
var (
	// Turns by outcome (ok, soft_failure)
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripagent",
			Subsystem: "agent",
			Name:      "turns_total",
			Help:      "Total number of processed conversation turns",
		},
		[]string{"outcome"},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tripagent",
			Subsystem: "agent",
			Name:      "turn_duration_seconds",
			Help:      "Conversation turn duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// Tool executions by tool and status (ok, failed)
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripagent",
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Total tool executions requested by the model",
		},
		[]string{"tool", "status"},
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tripagent",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total model round trips",
		},
		[]string{"provider", "outcome"},
	)

	IdempotentReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tripagent",
			Subsystem: "api",
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency cache",
		},
	)
)

// Outcome labels
const (
	OutcomeOK          = "ok"
	OutcomeSoftFailure = "soft_failure"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	StatusOK           = "ok"
	StatusFailed       = "failed"
)
