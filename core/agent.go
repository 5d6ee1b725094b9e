package core

import (
	"context"

	"github.com/google/uuid"
)

// AgentClient is the uniform interface over heterogeneous decision backends.
//
// Implementations MUST:
//   - Return within the deadline carried by ctx or fail; the orchestrator
//     maps deadline expiry to ErrAgentTimeout.
//   - Never touch the emulation directly; the returned plan is serialized
//     through the driver by the orchestrator.
//   - Attach non-empty commentary to every returned plan.
//
// Backends are not assumed reliable: transient failures are reported as
// errors and recovered by the control loop, never allowed to crash it.
type AgentClient interface {
	// Name returns the human-readable label used in commentary and logs.
	Name() string

	// Decide produces the next action plan for the given snapshot while
	// filling the given role.
	Decide(ctx context.Context, state GameState, role Role) (ActionPlan, error)
}

// NewID generates a unique identifier for sessions, subscriptions and
// decision requests.
func NewID() string { return uuid.NewString() }
