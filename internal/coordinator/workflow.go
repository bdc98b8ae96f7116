package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/swarmlab/convene/pkg/models"
)

// stepResult is the outcome of one step attempt chain.
type stepResult struct {
	outputs  map[string]any
	err      error
	duration time.Duration
}

// roleStats accumulates per-role step outcomes for contribution records.
type roleStats struct {
	outputs   map[string]any
	duration  time.Duration
	total     int
	succeeded int
}

// workflowOutcome is the aggregate outcome of one workflow run.
type workflowOutcome struct {
	// outputs is the last-write-wins merge of completed steps' outputs,
	// merged in declared step order.
	outputs map[string]any
	// byRole accumulates outcomes per role name.
	byRole map[string]*roleStats
	// stepErrors describes every failed step, for the continue policy.
	stepErrors []string
	// err is the failure that aborted the run, if any.
	err error
}

// runWorkflow executes the workflow's steps, sequentially or as a
// concurrent fan-out/join, under the workflow's error policy. Under
// stop (and retry, after exhaustion) the first failure aborts; under
// continue failures are recorded and the remaining steps' outputs are
// kept. Only steps that completed contribute outputs.
func (c *Coordinator) runWorkflow(ctx context.Context, wf models.Workflow, assignments map[string]*models.Agent, execCtx ExecutionContext) *workflowOutcome {
	out := &workflowOutcome{
		outputs: map[string]any{},
		byRole:  make(map[string]*roleStats, len(assignments)),
	}
	for name := range assignments {
		out.byRole[name] = &roleStats{outputs: map[string]any{}}
	}
	for _, step := range wf.Steps {
		if rs, ok := out.byRole[step.Role]; ok {
			rs.total++
		}
	}

	results := make([]*stepResult, len(wf.Steps))

	if wf.ParallelExecution {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		for i, step := range wf.Steps {
			g.Go(func() error {
				res := c.runStep(gctx, step, assignments[step.Role], execCtx, wf.ErrorHandling)
				mu.Lock()
				results[i] = res
				mu.Unlock()
				if res.err != nil && wf.ErrorHandling != models.ErrorContinue {
					return res.err
				}
				return nil
			})
		}

		joined := make(chan error, 1)
		go func() { joined <- g.Wait() }()
		select {
		case err := <-joined:
			out.err = err
		case <-ctx.Done():
			// Expired. Abandon unjoined steps; anything they produce
			// after this point is discarded.
			out.err = ctx.Err()
			mu.Lock()
			snapshot := make([]*stepResult, len(results))
			copy(snapshot, results)
			mu.Unlock()
			results = snapshot
		}
	} else {
		for i, step := range wf.Steps {
			if err := ctx.Err(); err != nil {
				out.err = err
				break
			}
			res := c.runStep(ctx, step, assignments[step.Role], execCtx, wf.ErrorHandling)
			results[i] = res
			if res.err != nil && wf.ErrorHandling != models.ErrorContinue {
				out.err = res.err
				break
			}
		}
	}

	// Merge in declared step order so collisions resolve deterministically.
	for i, res := range results {
		if res == nil {
			continue
		}
		step := wf.Steps[i]
		rs := out.byRole[step.Role]
		if rs != nil {
			rs.duration += res.duration
		}
		if res.err != nil {
			out.stepErrors = append(out.stepErrors, fmt.Sprintf("step %d (%s/%s): %v", i, step.Role, step.Action, res.err))
			continue
		}
		if rs != nil {
			rs.succeeded++
		}
		for k, v := range res.outputs {
			out.outputs[k] = v
			if rs != nil {
				rs.outputs[k] = v
			}
		}
	}

	return out
}

// runStep executes one step, retrying under the retry policy when the
// workflow asks for it. The returned result's duration covers all
// attempts.
func (c *Coordinator) runStep(ctx context.Context, step models.Step, agent *models.Agent, execCtx ExecutionContext, policy models.ErrorHandling) *stepResult {
	start := time.Now()
	res := &stepResult{}
	defer func() { res.duration = time.Since(start) }()

	if agent == nil {
		res.err = fmt.Errorf("no agent assigned for role %q", step.Role)
		return res
	}

	c.emitter.Emit(Event{
		Type:      EventStepStarted,
		TaskID:    execCtx.TaskID,
		Role:      step.Role,
		AgentID:   agent.ID,
		Action:    step.Action,
		Timestamp: time.Now(),
	})

	attempts := 1
	if policy == models.ErrorRetry && c.retry.MaxAttempts > 1 {
		attempts = c.retry.MaxAttempts
	}

	var outputs map[string]any
	var err error
	backoff := c.retry.InitialBackoff

	for attempt := 1; attempt <= attempts; attempt++ {
		outputs, err = c.executor.ExecuteStep(ctx, step, agent, execCtx)
		if err == nil {
			break
		}
		debugLog("step %s/%s attempt %d/%d failed: %v", step.Role, step.Action, attempt, attempts, err)
		if attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		if serr := sleepCtx(ctx, backoff); serr != nil {
			err = serr
			break
		}
		backoff *= 2
		c.emitter.Emit(Event{
			Type:      EventStepRetried,
			TaskID:    execCtx.TaskID,
			Role:      step.Role,
			AgentID:   agent.ID,
			Action:    step.Action,
			Message:   fmt.Sprintf("attempt %d of %d", attempt+1, attempts),
			Timestamp: time.Now(),
		})
	}

	if err != nil {
		res.err = &StepError{Step: step, Attempts: attempts, Err: err}
		c.emitter.Emit(Event{
			Type:      EventStepFailed,
			TaskID:    execCtx.TaskID,
			Role:      step.Role,
			AgentID:   agent.ID,
			Action:    step.Action,
			Error:     res.err,
			Timestamp: time.Now(),
		})
		return res
	}

	res.outputs = outputs
	c.emitter.Emit(Event{
		Type:      EventStepCompleted,
		TaskID:    execCtx.TaskID,
		Role:      step.Role,
		AgentID:   agent.ID,
		Action:    step.Action,
		Timestamp: time.Now(),
	})
	return res
}

// sleepCtx waits for d or until the context is done, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
