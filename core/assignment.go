package core

import "fmt"

// Role is the logical seat an agent fills for one decision.
type Role string

const (
	// RolePlayer drives overworld movement, menus and dialogue.
	RolePlayer Role = "player"
	// RoleBattle drives battle turns.
	RoleBattle Role = "battle"
)

// DispatchMode selects between one agent for everything or split
// player/battle seats.
type DispatchMode string

const (
	DispatchSingle DispatchMode = "single"
	DispatchDual   DispatchMode = "dual"
)

// ParseDispatchMode validates a raw mode token.
func ParseDispatchMode(token string) (DispatchMode, error) {
	switch DispatchMode(token) {
	case DispatchSingle:
		return DispatchSingle, nil
	case DispatchDual:
		return DispatchDual, nil
	}
	return "", fmt.Errorf("unknown dispatch mode %q", token)
}

// AssignmentConfig maps the two logical roles onto registered agent ids.
// It is the one piece of process-wide mutable configuration besides the
// session status; updates take effect on the next dispatch decision, never
// retroactively.
type AssignmentConfig struct {
	PlayerAgentID string       `json:"player_agent_id"`
	BattleAgentID string       `json:"battle_agent_id"`
	Dispatch      DispatchMode `json:"dispatch"`
}

// AgentIDs lists the ids this config dispatches to: the player agent, plus
// the battle agent in dual mode.
func (c AssignmentConfig) AgentIDs() []string {
	if c.Dispatch == DispatchDual {
		return []string{c.PlayerAgentID, c.BattleAgentID}
	}
	return []string{c.PlayerAgentID}
}

// Validate rejects configs that would leave a role unfillable.
func (c AssignmentConfig) Validate() error {
	if c.PlayerAgentID == "" {
		return fmt.Errorf("player agent id is required")
	}
	if c.Dispatch != DispatchSingle && c.Dispatch != DispatchDual {
		return fmt.Errorf("unknown dispatch mode %q", c.Dispatch)
	}
	if c.Dispatch == DispatchDual && c.BattleAgentID == "" {
		return fmt.Errorf("battle agent id is required in dual mode")
	}
	return nil
}
