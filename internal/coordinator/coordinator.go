package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swarmlab/convene/pkg/models"
)

// ExecutionContext carries per-run parameters for ExecuteAssembly.
type ExecutionContext struct {
	// TaskID identifies the run in the active registry and history.
	// Generated when empty.
	TaskID string
	// Timeout bounds the whole run. Zero means no timeout.
	Timeout time.Duration
	// Params holds caller-supplied data passed through to the executor.
	Params map[string]any
}

// Coordinator assigns agents from its pool to assembly roles and
// executes workflows against them. It owns the pool and the active-run
// registry; concurrent ExecuteAssembly calls serialize pool mutation so
// no agent is ever assigned twice.
type Coordinator struct {
	// mu guards agents, order, active, and history. It is never held
	// across step execution.
	mu     sync.Mutex
	agents map[string]*models.Agent
	// order preserves registration order so assignment ties break
	// deterministically.
	order   []string
	active  map[string]string
	history []*models.AssemblyResult

	historyLimit int
	sink         HistorySink
	emitter      *EventEmitter
	logger       *DebugLogger
	executor     StepExecutor
	retry        RetryPolicy
}

// New creates a Coordinator with an empty pool.
func New(opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	setPackageLogger(o.logger)

	return &Coordinator{
		agents:       make(map[string]*models.Agent),
		active:       make(map[string]string),
		historyLimit: o.historyLimit,
		sink:         o.sink,
		emitter:      NewEventEmitter(o.eventBuffer),
		logger:       o.logger,
		executor:     o.executor,
		retry:        o.retry,
	}
}

// RegisterAgent adds an agent to the pool. Registering an already-known
// id replaces the record and keeps its pool position.
func (c *Coordinator) RegisterAgent(agent *models.Agent) {
	if agent == nil || agent.ID == "" {
		return
	}
	if agent.Status == "" {
		agent.Status = models.AgentStatusAvailable
	}

	c.mu.Lock()
	if _, known := c.agents[agent.ID]; !known {
		c.order = append(c.order, agent.ID)
	}
	c.agents[agent.ID] = agent
	c.mu.Unlock()

	debugLog("registered agent %s (%s)", agent.ID, agent.Name)
	c.emitter.Emit(Event{
		Type:      EventAgentRegistered,
		AgentID:   agent.ID,
		Timestamp: time.Now(),
	})
}

// UnregisterAgent removes an agent from the pool. Unknown ids are a
// no-op.
func (c *Coordinator) UnregisterAgent(id string) {
	c.mu.Lock()
	_, known := c.agents[id]
	if known {
		delete(c.agents, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	if !known {
		return
	}
	debugLog("unregistered agent %s", id)
	c.emitter.Emit(Event{
		Type:      EventAgentUnregistered,
		AgentID:   id,
		Timestamp: time.Now(),
	})
}

// AgentCount returns the number of agents in the pool.
func (c *Coordinator) AgentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.agents)
}

// ActiveAssemblies returns the task ids of currently running assemblies,
// sorted for determinism.
func (c *Coordinator) ActiveAssemblies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Events returns the channel for receiving coordinator events.
func (c *Coordinator) Events() <-chan Event {
	return c.emitter.Events()
}

// DroppedEventCount returns the total number of dropped events.
func (c *Coordinator) DroppedEventCount() uint64 {
	return c.emitter.DroppedCount()
}

// Close releases the coordinator's event channel and log file. The
// coordinator must not be used afterwards.
func (c *Coordinator) Close() error {
	c.emitter.Close()
	return c.logger.Close()
}

// ExecuteAssembly runs one assembly: it fills every role from the pool,
// executes the workflow under the assembly's error policy, validates
// required outputs, and records the result in the execution history.
//
// Failures inside the run surface as a result with status failed and an
// error message, not as a returned error; the error return is reserved
// for contract violations such as a nil assembly or one with no roles.
// When the context or the run timeout expires the result is cancelled
// and carries whatever outputs completed before expiry. The active
// registry entry is removed and assigned agents are released on every
// exit path.
func (c *Coordinator) ExecuteAssembly(ctx context.Context, assembly *models.Assembly, execCtx ExecutionContext) (*models.AssemblyResult, error) {
	if assembly == nil {
		return nil, ErrNilAssembly
	}
	if len(assembly.Roles) == 0 {
		return nil, fmt.Errorf("%s: %w", assembly.Name, ErrNoRoles)
	}

	taskID := execCtx.TaskID
	if taskID == "" {
		taskID = uuid.New().String()[:8]
		execCtx.TaskID = taskID
	}

	start := time.Now()
	result := &models.AssemblyResult{
		AssemblyName: assembly.Name,
		TaskID:       taskID,
		Status:       models.StatusPending,
		Metadata:     map[string]any{},
		StartedAt:    start,
	}

	c.mu.Lock()
	c.active[taskID] = assembly.Name
	c.mu.Unlock()

	defer func() {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(start)

		c.mu.Lock()
		delete(c.active, taskID)
		c.mu.Unlock()

		c.appendHistory(context.WithoutCancel(ctx), result)
		c.emitter.Emit(Event{
			Type:         terminalEvent(result.Status),
			TaskID:       taskID,
			AssemblyName: assembly.Name,
			Message:      result.ErrorMessage,
			Timestamp:    time.Now(),
		})
		debugLog("assembly %s (task %s) finished: %s", assembly.Name, taskID, result.Status)
	}()

	debugLog("starting assembly %s (task %s), %d roles, %d steps",
		assembly.Name, taskID, len(assembly.Roles), len(assembly.Workflow.Steps))
	c.emitter.Emit(Event{
		Type:         EventAssemblyStarted,
		TaskID:       taskID,
		AssemblyName: assembly.Name,
		Timestamp:    time.Now(),
	})
	result.Status = models.StatusRunning

	if execCtx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, execCtx.Timeout)
		defer cancel()
	}

	assignments, unfilled := c.assignRoles(assembly.Roles)
	if len(unfilled) > 0 {
		c.releaseAgents(assignments)
		result.Status = models.StatusFailed
		result.ErrorMessage = fmt.Sprintf("unfulfilled roles: %s", strings.Join(unfilled, ", "))
		return result, nil
	}
	defer c.releaseAgents(assignments)

	c.emitter.Emit(Event{
		Type:         EventRolesAssigned,
		TaskID:       taskID,
		AssemblyName: assembly.Name,
		Message:      fmt.Sprintf("%d roles filled", len(assignments)),
		Timestamp:    time.Now(),
	})

	outcome := c.runWorkflow(ctx, assembly.Workflow, assignments, execCtx)

	result.Outputs = outcome.outputs
	result.Contributions = collectContributions(assembly.Roles, assignments, outcome)
	if len(outcome.stepErrors) > 0 {
		result.Metadata["step_errors"] = outcome.stepErrors
	}

	if outcome.err != nil {
		if errors.Is(outcome.err, context.DeadlineExceeded) || errors.Is(outcome.err, context.Canceled) {
			result.Status = models.StatusCancelled
			result.ErrorMessage = fmt.Sprintf("execution cancelled: %v", outcome.err)
		} else {
			result.Status = models.StatusFailed
			result.ErrorMessage = outcome.err.Error()
		}
		return result, nil
	}

	if missing := missingOutputs(result.Outputs, assembly.SuccessCriteria); len(missing) > 0 {
		result.Status = models.StatusFailed
		result.ErrorMessage = fmt.Sprintf("missing required outputs: %s", strings.Join(missing, ", "))
		return result, nil
	}

	result.Status = models.StatusCompleted
	return result, nil
}

// terminalEvent maps a terminal status to its event type.
func terminalEvent(status models.ExecutionStatus) EventType {
	switch status {
	case models.StatusCompleted:
		return EventAssemblyCompleted
	case models.StatusCancelled:
		return EventAssemblyCancelled
	default:
		return EventAssemblyFailed
	}
}

// missingOutputs returns the required output keys absent from outputs,
// in declaration order. The quality threshold in the criteria is
// declared only and never enforced here.
func missingOutputs(outputs map[string]any, criteria models.SuccessCriteria) []string {
	var missing []string
	for _, key := range criteria.RequiredOutputs {
		if _, ok := outputs[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// collectContributions builds one Contribution per filled role, keyed by
// agent id. The quality score is the fraction of the role's steps that
// succeeded; a role with no steps scores 1.
func collectContributions(roles []models.Role, assignments map[string]*models.Agent, outcome *workflowOutcome) map[string]*models.Contribution {
	contributions := make(map[string]*models.Contribution, len(assignments))
	for _, role := range roles {
		agent, ok := assignments[role.Name]
		if !ok {
			continue
		}

		contribution := &models.Contribution{
			AgentID:      agent.ID,
			RoleName:     role.Name,
			Outputs:      map[string]any{},
			QualityScore: 1,
		}
		if rs, ok := outcome.byRole[role.Name]; ok {
			contribution.Outputs = rs.outputs
			contribution.Duration = rs.duration
			if rs.total > 0 {
				contribution.QualityScore = float64(rs.succeeded) / float64(rs.total)
			}
		}
		contributions[agent.ID] = contribution
	}
	return contributions
}
