// Package coordinator assigns agents to assembly roles and executes
// workflows against them, respecting step-level error policy.
package coordinator

import (
	"time"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventAssemblyStarted indicates an assembly run has started.
	EventAssemblyStarted EventType = "assembly_started"
	// EventRolesAssigned indicates all roles were filled.
	EventRolesAssigned EventType = "roles_assigned"
	// EventStepStarted indicates a workflow step has started.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted indicates a workflow step completed successfully.
	EventStepCompleted EventType = "step_completed"
	// EventStepRetried indicates a failed step is about to be retried.
	EventStepRetried EventType = "step_retried"
	// EventStepFailed indicates a workflow step failed.
	EventStepFailed EventType = "step_failed"
	// EventAssemblyCompleted indicates a run completed successfully.
	EventAssemblyCompleted EventType = "assembly_completed"
	// EventAssemblyFailed indicates a run failed.
	EventAssemblyFailed EventType = "assembly_failed"
	// EventAssemblyCancelled indicates a run was cancelled, typically by timeout.
	EventAssemblyCancelled EventType = "assembly_cancelled"
	// EventAgentRegistered indicates an agent joined the pool.
	EventAgentRegistered EventType = "agent_registered"
	// EventAgentUnregistered indicates an agent left the pool.
	EventAgentUnregistered EventType = "agent_unregistered"
)

// Event represents an event emitted by the coordinator. Subscribers
// receive these to track run progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the id the run was registered under, if applicable.
	TaskID string
	// AssemblyName is the name of the related assembly, if applicable.
	AssemblyName string
	// Role is the related role name, if applicable.
	Role string
	// AgentID is the id of the related agent, if applicable.
	AgentID string
	// Action is the step action, for step events.
	Action string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
