package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements Collector using Prometheus metrics
type PrometheusCollector struct {
	// Supervisor metrics
	stateTransitions *prometheus.CounterVec
	startFailures    *prometheus.CounterVec
	stopDuration     prometheus.Histogram

	// Health metrics
	healthChecks *prometheus.CounterVec

	// Proxy metrics
	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheusCollector creates a new Prometheus metrics collector
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "hypershell"
	}

	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
	}

	pc.stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supervisor_state_transitions_total",
			Help:      "Total number of backend supervisor state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	pc.startFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supervisor_start_failures_total",
			Help:      "Total number of failed backend starts",
		},
		[]string{"code"},
	)

	pc.stopDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "supervisor_stop_duration_seconds",
			Help:      "Duration of backend termination",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	pc.healthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_checks_total",
			Help:      "Total number of backend health checks by result",
		},
		[]string{"result"},
	)

	pc.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of forwarded tool calls",
		},
		[]string{"tool", "outcome"},
	)

	pc.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of forwarded tool calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	pc.registry.MustRegister(
		pc.stateTransitions,
		pc.startFailures,
		pc.stopDuration,
		pc.healthChecks,
		pc.toolCalls,
		pc.toolCallDuration,
	)

	return pc
}

// SupervisorStateTransition records a supervisor state change
func (pc *PrometheusCollector) SupervisorStateTransition(fromState, toState string) {
	pc.stateTransitions.WithLabelValues(fromState, toState).Inc()
}

// SupervisorStartFailed records a failed start by error code
func (pc *PrometheusCollector) SupervisorStartFailed(code string) {
	pc.startFailures.WithLabelValues(code).Inc()
}

// SupervisorStopDuration records how long terminating the backend took
func (pc *PrometheusCollector) SupervisorStopDuration(duration time.Duration) {
	pc.stopDuration.Observe(duration.Seconds())
}

// HealthCheck records a single health probe result
func (pc *PrometheusCollector) HealthCheck(result string) {
	pc.healthChecks.WithLabelValues(result).Inc()
}

// ToolCall records one forwarded tool invocation
func (pc *PrometheusCollector) ToolCall(tool string, duration time.Duration, outcome string) {
	pc.toolCalls.WithLabelValues(tool, outcome).Inc()
	pc.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// Registry returns the Prometheus registry holding the collector's metrics
func (pc *PrometheusCollector) Registry() *prometheus.Registry {
	return pc.registry
}

// Handler returns an HTTP handler exposing the registry in the Prometheus text format
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{})
}
