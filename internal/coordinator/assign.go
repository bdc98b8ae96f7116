package coordinator

import (
	"github.com/swarmlab/convene/pkg/models"
)

// assignRoles fills each role, in listed order, with the available agent
// whose capability set overlaps the role's the most. An agent sharing no
// capability with the role never fills it; a role that requires no
// capabilities takes the first available agent. Ties break by pool
// registration order. Selected agents are marked assigned while the lock
// is held so concurrent runs can never pick the same agent.
//
// All roles are attempted even after one cannot be filled, so the
// returned unfilled list names every unfulfillable role at once.
func (c *Coordinator) assignRoles(roles []models.Role) (map[string]*models.Agent, []string) {
	assignments := make(map[string]*models.Agent, len(roles))
	var unfilled []string

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, role := range roles {
		var best *models.Agent
		bestScore := 0

		for _, id := range c.order {
			agent := c.agents[id]
			if agent.Status != models.AgentStatusAvailable {
				continue
			}
			if len(role.Capabilities) == 0 {
				best = agent
				break
			}
			if score := agent.CapabilityOverlap(role.Capabilities); score > bestScore {
				best = agent
				bestScore = score
			}
		}

		if best == nil {
			unfilled = append(unfilled, role.Name)
			continue
		}

		best.Status = models.AgentStatusAssigned
		best.CurrentRole = role.Name
		assignments[role.Name] = best
		debugLog("assigned agent %s to role %s (overlap %d)", best.ID, role.Name, bestScore)
	}

	return assignments, unfilled
}

// releaseAgents returns assigned agents to the pool. Safe to call with a
// partial assignment map.
func (c *Coordinator) releaseAgents(assignments map[string]*models.Agent) {
	if len(assignments) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, agent := range assignments {
		agent.Status = models.AgentStatusAvailable
		agent.CurrentRole = ""
	}
}
