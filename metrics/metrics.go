// Package metrics exposes Prometheus instruments for workflow runs and
// outbound API calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Metrics holds all instruments; a nil *Metrics is a valid no-op recorder.
type Metrics struct {
	// WorkflowsStarted counts worker runs labeled by feature.
	WorkflowsStarted *prometheus.CounterVec
	// WorkflowsFinished counts finished worker runs labeled by feature and outcome.
	WorkflowsFinished *prometheus.CounterVec
	// WorkflowDuration observes worker run duration in seconds labeled by feature.
	WorkflowDuration *prometheus.HistogramVec
	// WorkflowsInFlight tracks running workers labeled by feature.
	WorkflowsInFlight *prometheus.GaugeVec
	// ActionsDispatched counts reduced actions labeled by kind.
	ActionsDispatched *prometheus.CounterVec
	// ActionsDropped counts stale terminal actions discarded by the store.
	ActionsDropped *prometheus.CounterVec
	// RequestsTotal counts outbound API calls labeled by method and status code class.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration observes outbound API call duration in seconds labeled by method.
	RequestDuration *prometheus.HistogramVec
}

// New creates instruments registered with registerer; nil uses a private registry.
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &Metrics{
		WorkflowsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_started_total",
			Help:      "Total number of worker runs started",
		}, []string{"feature"}),
		WorkflowsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_finished_total",
			Help:      "Total number of worker runs finished by outcome",
		}, []string{"feature", "outcome"}),
		WorkflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Duration of worker runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feature"}),
		WorkflowsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workflows_in_flight",
			Help:      "Number of running workers",
		}, []string{"feature"}),
		ActionsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dispatched_total",
			Help:      "Total number of actions reduced by the store",
		}, []string{"kind"}),
		ActionsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dropped_total",
			Help:      "Total number of stale terminal actions discarded",
		}, []string{"kind"}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of outbound API calls",
		}, []string{"method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// WorkflowStarted records a worker start
func (m *Metrics) WorkflowStarted(feature string) {
	if m == nil {
		return
	}
	m.WorkflowsStarted.WithLabelValues(feature).Inc()
	m.WorkflowsInFlight.WithLabelValues(feature).Inc()
}

// WorkflowFinished records a worker end
func (m *Metrics) WorkflowFinished(feature, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.WorkflowsFinished.WithLabelValues(feature, outcome).Inc()
	m.WorkflowDuration.WithLabelValues(feature).Observe(seconds)
	m.WorkflowsInFlight.WithLabelValues(feature).Dec()
}

// ActionDispatched records a reduced action
func (m *Metrics) ActionDispatched(kind string) {
	if m == nil {
		return
	}
	m.ActionsDispatched.WithLabelValues(kind).Inc()
}

// ActionDropped records a discarded stale action
func (m *Metrics) ActionDropped(kind string) {
	if m == nil {
		return
	}
	m.ActionsDropped.WithLabelValues(kind).Inc()
}

// Request records an outbound call; code is the HTTP status or "error"
func (m *Metrics) Request(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}
