// Package metrics collects and exposes Prometheus metrics for the ledger.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

// Collector records lifecycle and tool activity. It satisfies lifecycle.Recorder.
type Collector struct {
	applicationsCreated prometheus.Counter
	eventsRecorded      *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	concurrentUpdates   prometheus.Counter
	toolCalls           *prometheus.CounterVec
	toolLatency         *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		applicationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "career_ledger_applications_created_total",
			Help: "Applications created",
		}),
		eventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "career_ledger_events_recorded_total",
			Help: "Lifecycle events recorded, by event type",
		}, []string{"event_type"}),
		transitionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "career_ledger_transitions_rejected_total",
			Help: "Events refused by the transition policy, by reason",
		}, []string{"reason"}),
		concurrentUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "career_ledger_concurrent_updates_total",
			Help: "Appends rejected because the application changed underneath",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "career_ledger_tool_calls_total",
			Help: "MCP tool calls, by tool and outcome",
		}, []string{"tool", "outcome"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "career_ledger_tool_latency_seconds",
			Help:    "MCP tool call latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
	}

	reg.MustRegister(
		c.applicationsCreated,
		c.eventsRecorded,
		c.transitionsRejected,
		c.concurrentUpdates,
		c.toolCalls,
		c.toolLatency,
	)

	return c
}

func (c *Collector) ApplicationCreated() {
	c.applicationsCreated.Inc()
}

func (c *Collector) EventRecorded(t domain.EventType) {
	c.eventsRecorded.WithLabelValues(t.String()).Inc()
}

func (c *Collector) TransitionRejected(reason domain.TransitionReason) {
	c.transitionsRejected.WithLabelValues(string(reason)).Inc()
}

func (c *Collector) ConcurrentUpdate() {
	c.concurrentUpdates.Inc()
}

// ToolCall records one tool invocation and its latency
func (c *Collector) ToolCall(tool string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.toolCalls.WithLabelValues(tool, outcome).Inc()
	c.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler returns the /metrics HTTP handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
