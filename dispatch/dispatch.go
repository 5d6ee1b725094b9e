// Package dispatch maps (mode, assignment) to the agent responsible for the
// next decision. SelectAgent is a pure function: it retains no state between
// calls, so a mode change or a live reconfiguration is reflected on the very
// next decision point without restarting the session.
package dispatch

import "github.com/vaibhavi8/autoplay/core"

// SelectAgent resolves the active role and agent id for one decision.
//
// Single dispatch always selects the player agent, whatever the mode; the
// role still reflects the true mode so the agent can adapt its reasoning.
// Dual dispatch hands battles to the battle agent and everything else to the
// player agent.
func SelectAgent(mode core.Mode, cfg core.AssignmentConfig) (core.Role, string) {
	role := core.RolePlayer
	if mode == core.ModeBattling {
		role = core.RoleBattle
	}
	if cfg.Dispatch == core.DispatchDual && mode == core.ModeBattling {
		return role, cfg.BattleAgentID
	}
	return role, cfg.PlayerAgentID
}
