// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ToolCalls       *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	AuditChildren   *prometheus.CounterVec
	AuditTruncated  prometheus.Counter
	ProviderRetries prometheus.Counter
	ClientsBuilt    prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gcpwatch_tool_calls_total",
			Help: "Tool calls by tool name and outcome kind",
		}, []string{"tool", "outcome"}),
		ToolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gcpwatch_tool_duration_seconds",
			Help:    "Tool call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		AuditChildren: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gcpwatch_audit_children_total",
			Help: "Audited child projects by final state and failure kind",
		}, []string{"state", "kind"}),
		AuditTruncated: f.NewCounter(prometheus.CounterOpts{
			Name: "gcpwatch_audit_truncated_total",
			Help: "Audits whose discovery hit the child cap",
		}),
		ProviderRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "gcpwatch_provider_retries_total",
			Help: "Provider requests retried after a transient failure",
		}),
		ClientsBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "gcpwatch_scoped_clients_total",
			Help: "Scoped provider clients constructed",
		}),
	}
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveChild records the final state of one audited child.
func (m *Metrics) ObserveChild(state, kind string) {
	if m == nil {
		return
	}
	m.AuditChildren.WithLabelValues(state, kind).Inc()
}

// IncrementTruncated counts an audit that hit the discovery cap.
func (m *Metrics) IncrementTruncated() {
	if m == nil {
		return
	}
	m.AuditTruncated.Inc()
}

// IncrementRetries counts one provider retry.
func (m *Metrics) IncrementRetries() {
	if m == nil {
		return
	}
	m.ProviderRetries.Inc()
}

// IncrementClients counts one scoped client construction.
func (m *Metrics) IncrementClients() {
	if m == nil {
		return
	}
	m.ClientsBuilt.Inc()
}

// Handler serves the private registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
