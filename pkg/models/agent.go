package models

// AgentStatus represents the current state of an agent in the pool.
type AgentStatus string

const (
	// AgentStatusAvailable indicates the agent can be assigned a role.
	AgentStatusAvailable AgentStatus = "available"
	// AgentStatusAssigned indicates the agent currently holds a role.
	AgentStatusAssigned AgentStatus = "assigned"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusAvailable, AgentStatusAssigned:
		return true
	default:
		return false
	}
}

// Agent is an interchangeable worker supplied by an external pool. The
// coordinator borrows and returns agents; it never creates them.
type Agent struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// Name is the human-readable name of the agent.
	Name string `json:"name"`
	// Capabilities lists what this agent can do.
	Capabilities []string `json:"capabilities,omitempty"`
	// CurrentRole is the name of the role the agent holds, if any.
	// An agent holds at most one role at a time.
	CurrentRole string `json:"current_role,omitempty"`
	// Status is the current pool state of the agent.
	Status AgentStatus `json:"status"`
}

// HasCapability returns true if the agent's capability set contains cap.
func (a *Agent) HasCapability(cap string) bool {
	for _, c := range a.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// CapabilityOverlap returns the number of required capabilities the agent
// possesses.
func (a *Agent) CapabilityOverlap(required []string) int {
	overlap := 0
	for _, cap := range required {
		if a.HasCapability(cap) {
			overlap++
		}
	}
	return overlap
}
