// Package metrics exposes Prometheus collectors for the agent loop. A
// Collector is attached to sessions through agent.Hooks.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reactloop"

// Collector holds the loop metrics.
type Collector struct {
	turns         prometheus.Counter
	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	sessions      *prometheus.CounterVec
	sessionTurns  prometheus.Histogram
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of loop turns started",
		}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Total number of gateway calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		modelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Duration of gateway calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool dispatches by tool and outcome",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool executions",
		}, []string{"tool"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished sessions by status and failure reason",
		}, []string{"status", "reason"}),
		sessionTurns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_turns",
			Help:      "Turns used per finished session",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	for _, col := range []prometheus.Collector{
		c.turns, c.modelCalls, c.modelDuration, c.toolCalls, c.toolDuration, c.sessions, c.sessionTurns,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns agent hooks recording into c.
func (c *Collector) Hooks() agent.Hooks {
	return agent.Hooks{
		OnTurnStart: func(context.Context, *agent.TurnEvent) {
			c.turns.Inc()
		},
		OnModelResponse: func(_ context.Context, e *agent.ModelEvent) {
			c.modelCalls.WithLabelValues(e.Model.Provider, outcome(e.Err)).Inc()
			c.modelDuration.WithLabelValues(e.Model.Provider).Observe(e.Duration.Seconds())
		},
		OnToolReturn: func(_ context.Context, e *agent.ToolEvent) {
			o := outcome(e.Err)
			if errors.Is(e.Err, core.ErrUnknownAction) {
				o = "unknown"
			}
			c.toolCalls.WithLabelValues(e.Tool, o).Inc()
			if o != "unknown" {
				c.toolDuration.WithLabelValues(e.Tool).Observe(e.Duration.Seconds())
			}
		},
		OnFinish: func(_ context.Context, r *agent.Result) {
			c.sessions.WithLabelValues(string(r.Status), Reason(r.Err)).Inc()
			c.sessionTurns.Observe(float64(r.Turns))
		},
	}
}

// Reason maps a session error onto a low-cardinality label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, core.ErrGateway):
		return "gateway"
	case errors.Is(err, core.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, core.ErrTurnBudgetExhausted):
		return "turn_budget"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler returns an HTTP handler serving the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
