package core

import (
	"fmt"
	"time"
)

// Action is one primitive input from the closed vocabulary. Anything else is
// rejected with ErrInvalidAction before it reaches the emulation.
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionMenuStart  Action = "menu-start"
	ActionMenuSelect Action = "menu-select"
	ActionUp         Action = "up"
	ActionDown       Action = "down"
	ActionLeft       Action = "left"
	ActionRight      Action = "right"
)

// Actions lists the full vocabulary in a stable order, for prompts and
// documentation.
func Actions() []Action {
	return []Action{
		ActionConfirm, ActionCancel, ActionMenuStart, ActionMenuSelect,
		ActionUp, ActionDown, ActionLeft, ActionRight,
	}
}

var validActions = map[Action]struct{}{
	ActionConfirm: {}, ActionCancel: {}, ActionMenuStart: {}, ActionMenuSelect: {},
	ActionUp: {}, ActionDown: {}, ActionLeft: {}, ActionRight: {},
}

// ParseAction validates a raw token against the vocabulary.
func ParseAction(token string) (Action, error) {
	a := Action(token)
	if _, ok := validActions[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, token)
	}
	return a, nil
}

// ParseActions validates a sequence of raw tokens. The first invalid token
// rejects the whole sequence; no partial plan is produced.
func ParseActions(tokens []string) ([]Action, error) {
	out := make([]Action, 0, len(tokens))
	for _, t := range tokens {
		a, err := ParseAction(t)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ActionPlan is an ordered sequence of primitive actions produced by a
// single agent decision. A plan is consumed exactly once by the driver;
// execution is all-or-nothing per plan but observable action by action.
type ActionPlan struct {
	Actions []Action `json:"actions"`
	// Delay is the pause between consecutive actions.
	Delay time.Duration `json:"delay"`
	// Commentary is the agent's human-readable explanation. Must be
	// non-empty for agent-originated plans.
	Commentary string `json:"commentary"`
}

// PlanResult reports how much of a plan the driver applied before finishing
// or being asked to stop.
type PlanResult struct {
	Executed  int  `json:"executed"`
	Completed bool `json:"completed"`
}
