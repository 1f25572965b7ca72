// Package metrics records supervisor, health probe and command proxy activity.
package metrics

import (
	"time"
)

// Outcome labels shared by the collectors
const (
	OutcomeSuccess = "success"
)

// Collector defines the interface for collecting supervisor and proxy metrics
type Collector interface {
	// SupervisorStateTransition records a supervisor state change
	SupervisorStateTransition(fromState, toState string)

	// SupervisorStartFailed records a failed start by error code
	SupervisorStartFailed(code string)

	// SupervisorStopDuration records how long terminating the backend took
	SupervisorStopDuration(duration time.Duration)

	// HealthCheck records a single health probe result
	HealthCheck(result string)

	// ToolCall records one forwarded tool invocation
	ToolCall(tool string, duration time.Duration, outcome string)
}

// noopCollector is a no-op implementation of Collector
type noopCollector struct{}

func (n *noopCollector) SupervisorStateTransition(fromState, toState string)          {}
func (n *noopCollector) SupervisorStartFailed(code string)                            {}
func (n *noopCollector) SupervisorStopDuration(duration time.Duration)                {}
func (n *noopCollector) HealthCheck(result string)                                    {}
func (n *noopCollector) ToolCall(tool string, duration time.Duration, outcome string) {}

// NewNoopCollector creates a no-op metrics collector
func NewNoopCollector() Collector {
	return &noopCollector{}
}
