package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaibhavi8/autoplay/core"
)

// SystemPrompt describes the task and the action vocabulary to an LLM
// backend. Responses outside the documented JSON shape are rejected by
// ParsePlan.
func SystemPrompt(role core.Role) string {
	var b strings.Builder
	b.WriteString("You are playing a classic monster-catching game through an emulator. ")
	if role == core.RoleBattle {
		b.WriteString("You are currently fighting a battle: pick moves, switch party members or use items as needed. ")
	} else {
		b.WriteString("You are currently exploring the overworld: move around, talk to characters and progress the story. ")
	}
	b.WriteString("Decide the next few button inputs from the game state you are given.\n\n")
	b.WriteString("Allowed actions: ")
	for i, a := range core.Actions() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(a))
	}
	b.WriteString(".\n")
	b.WriteString(`Respond with a single JSON object: {"actions": ["..."], "commentary": "..."}. ` +
		"Keep the plan short (1-6 actions) and the commentary to one or two lively sentences for the audience.")
	return b.String()
}

// UserPrompt renders the snapshot handed to the backend.
func UserPrompt(state core.GameState) string {
	raw, err := json.Marshal(state)
	if err != nil {
		// GameState is plain data; this cannot realistically fail.
		return fmt.Sprintf("%+v", state)
	}
	return "Current game state:\n" + string(raw)
}

// planPayload is the JSON shape the LLM backends are asked to produce.
type planPayload struct {
	Actions    []string `json:"actions"`
	Commentary string   `json:"commentary"`
}

// ParsePlan extracts an ActionPlan from raw model output. The payload may be
// surrounded by prose or markdown fences; the first balanced JSON object is
// used. Malformed payloads, unknown action tokens, empty plans and empty
// commentary are all reported as core.ErrAgent.
func ParsePlan(raw string) (core.ActionPlan, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return core.ActionPlan{}, fmt.Errorf("%w: no JSON object in response", core.ErrAgent)
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return core.ActionPlan{}, fmt.Errorf("%w: malformed response: %v", core.ErrAgent, err)
	}
	if len(payload.Actions) == 0 {
		return core.ActionPlan{}, fmt.Errorf("%w: response contains no actions", core.ErrAgent)
	}
	if strings.TrimSpace(payload.Commentary) == "" {
		return core.ActionPlan{}, fmt.Errorf("%w: commentary must be non-empty", core.ErrAgent)
	}

	actions, err := core.ParseActions(payload.Actions)
	if err != nil {
		return core.ActionPlan{}, fmt.Errorf("%w: %v", core.ErrAgent, err)
	}
	return core.ActionPlan{Actions: actions, Commentary: payload.Commentary}, nil
}
