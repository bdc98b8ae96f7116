package models

import "time"

// ExecutionStatus represents the lifecycle state of an assembly run.
// Transitions: pending -> running -> {completed, failed, cancelled}.
type ExecutionStatus string

const (
	// StatusPending indicates the run has not started.
	StatusPending ExecutionStatus = "pending"
	// StatusRunning indicates the run is in progress.
	StatusRunning ExecutionStatus = "running"
	// StatusCompleted indicates the run finished and passed validation.
	StatusCompleted ExecutionStatus = "completed"
	// StatusFailed indicates the run failed.
	StatusFailed ExecutionStatus = "failed"
	// StatusCancelled indicates the run was cancelled, typically by timeout.
	StatusCancelled ExecutionStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ErrorHandling is the policy applied when a workflow step fails.
type ErrorHandling string

const (
	// ErrorStop aborts the run on the first step failure.
	ErrorStop ErrorHandling = "stop"
	// ErrorContinue records the step error and keeps other steps' outputs.
	ErrorContinue ErrorHandling = "continue"
	// ErrorRetry retries the failing step with bounded backoff before
	// falling back to stop semantics.
	ErrorRetry ErrorHandling = "retry"
)

// Valid returns true if the policy is a known value.
func (e ErrorHandling) Valid() bool {
	switch e {
	case ErrorStop, ErrorContinue, ErrorRetry:
		return true
	default:
		return false
	}
}

// Role is a named capability requirement filled by exactly one agent
// during an assembly run.
type Role struct {
	// Name is the role's name, unique within an assembly.
	Name string `json:"name" yaml:"name"`
	// Capabilities lists the capabilities required for this role.
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	// Responsibilities describes what the role is accountable for.
	Responsibilities []string `json:"responsibilities,omitempty" yaml:"responsibilities,omitempty"`
	// DependsOn lists names of roles this role depends on.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Step is a single workflow step descriptor. Step execution is delegated
// to a StepExecutor supplied by the caller.
type Step struct {
	// Role names the role responsible for this step.
	Role string `json:"role" yaml:"role"`
	// Action names the operation the role performs.
	Action string `json:"action" yaml:"action"`
	// Params holds step-specific parameters.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Workflow is the ordered or parallel set of steps executed once all
// roles are filled.
type Workflow struct {
	// Steps are the step descriptors, in declaration order.
	Steps []Step `json:"steps" yaml:"steps"`
	// ParallelExecution runs all steps concurrently when true.
	ParallelExecution bool `json:"parallel_execution" yaml:"parallel_execution"`
	// ErrorHandling is the step failure policy.
	ErrorHandling ErrorHandling `json:"error_handling" yaml:"error_handling"`
}

// SuccessCriteria defines what a completed assembly run must produce.
type SuccessCriteria struct {
	// RequiredOutputs lists output keys that must be present.
	RequiredOutputs []string `json:"required_outputs" yaml:"required_outputs"`
	// QualityThreshold is a declared confidence threshold. The coordinator
	// does not enforce it; callers may via the aggregate package.
	QualityThreshold float64 `json:"quality_threshold,omitempty" yaml:"quality_threshold,omitempty"`
	// Timeout is an optional bound on the whole run.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// ValidationRules names additional validation rules to apply.
	ValidationRules []string `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
}

// Assembly is a reusable template of roles, a workflow, and success
// criteria for one class of multi-agent run.
type Assembly struct {
	// Name is the assembly's name.
	Name string `json:"name" yaml:"name"`
	// Description explains the assembly's purpose.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Version is the template version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Roles are the roles this assembly needs filled, in assignment order.
	Roles []Role `json:"roles" yaml:"roles"`
	// Workflow defines the steps to execute.
	Workflow Workflow `json:"workflow" yaml:"workflow"`
	// SuccessCriteria defines what the run must produce.
	SuccessCriteria SuccessCriteria `json:"success_criteria" yaml:"success_criteria"`
}

// Contribution records what one agent produced while filling one role.
type Contribution struct {
	// AgentID is the contributing agent.
	AgentID string `json:"agent_id"`
	// RoleName is the role the agent filled.
	RoleName string `json:"role_name"`
	// Outputs are the step outputs attributed to this role.
	Outputs map[string]any `json:"outputs,omitempty"`
	// Duration is how long the role's steps took.
	Duration time.Duration `json:"duration"`
	// QualityScore rates the contribution in [0,1].
	QualityScore float64 `json:"quality_score"`
}

// AssemblyResult is the outcome of one assembly run.
type AssemblyResult struct {
	// AssemblyName names the executed assembly.
	AssemblyName string `json:"assembly_name"`
	// TaskID is the caller-supplied id the run was registered under.
	TaskID string `json:"task_id"`
	// Status is the terminal status of the run.
	Status ExecutionStatus `json:"status"`
	// Outputs are the merged step outputs. On key collision the later
	// step's value wins.
	Outputs map[string]any `json:"outputs,omitempty"`
	// Contributions maps agent ids to their per-role contributions.
	Contributions map[string]*Contribution `json:"contributions,omitempty"`
	// Duration is the total run time.
	Duration time.Duration `json:"duration"`
	// ErrorMessage describes the failure, if any.
	ErrorMessage string `json:"error_message,omitempty"`
	// Metadata holds run annotations such as per-step errors under the
	// continue policy.
	Metadata map[string]any `json:"metadata,omitempty"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time `json:"completed_at"`
}
