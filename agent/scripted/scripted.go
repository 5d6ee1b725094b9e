// Package scripted provides a deterministic decision backend with simple
// exploration and battle heuristics. It needs no network and is the default
// backend for demos, offline play and tests.
package scripted

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/vaibhavi8/autoplay/core"
)

const historySize = 20

// Options configures the scripted client.
type Options struct {
	Name string
	// Seed makes the movement choices reproducible.
	Seed int64
	// InteractChance is the probability of interacting instead of moving
	// while exploring.
	InteractChance float64
	// RetreatThreshold is the HP fraction below which the client backs
	// out of a battle turn to reach for items.
	RetreatThreshold float64
}

// Client implements core.AgentClient with local heuristics: anti-backtrack
// exploration and a low-HP retreat rule in battle.
type Client struct {
	opts Options

	mu      sync.Mutex
	rng     *rand.Rand
	history []core.Action
}

var _ core.AgentClient = (*Client)(nil)

// New constructs a scripted client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Name:             "Scripted",
		Seed:             1,
		InteractChance:   0.3,
		RetreatThreshold: 0.3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{opts: opts, rng: rand.New(rand.NewSource(opts.Seed))}
}

// Name returns the label used in commentary and logs.
func (c *Client) Name() string { return c.opts.Name }

// Decide implements core.AgentClient.
func (c *Client) Decide(ctx context.Context, state core.GameState, role core.Role) (core.ActionPlan, error) {
	if err := ctx.Err(); err != nil {
		return core.ActionPlan{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var plan core.ActionPlan
	if role == core.RoleBattle {
		plan = c.battleTurn(state)
	} else {
		plan = c.exploreStep(state)
	}
	c.record(plan.Actions)
	return plan, nil
}

func (c *Client) battleTurn(state core.GameState) core.ActionPlan {
	if len(state.Party) == 0 {
		return core.ActionPlan{
			Actions:    []core.Action{core.ActionConfirm},
			Commentary: "Let's see what happens next in this battle!",
		}
	}
	lead := state.Party[0]
	if lead.MaxHP > 0 && float64(lead.HP)/float64(lead.MaxHP) < c.opts.RetreatThreshold {
		return core.ActionPlan{
			Actions:    []core.Action{core.ActionCancel},
			Commentary: fmt.Sprintf("%s is low on health, backing out to grab a potion.", lead.Name),
		}
	}
	return core.ActionPlan{
		Actions:    []core.Action{core.ActionConfirm, core.ActionConfirm},
		Commentary: "Sticking with our strongest move. It should be super effective!",
	}
}

func (c *Client) exploreStep(state core.GameState) core.ActionPlan {
	if len(c.history) == 0 {
		return core.ActionPlan{
			Actions:    []core.Action{core.ActionConfirm},
			Commentary: "Time to start the adventure!",
		}
	}
	if c.rng.Float64() < c.opts.InteractChance {
		return core.ActionPlan{
			Actions:    []core.Action{core.ActionConfirm},
			Commentary: fmt.Sprintf("Checking what's here in %s.", state.Location),
		}
	}
	dir := c.pickDirection()
	return core.ActionPlan{
		Actions:    []core.Action{dir, dir},
		Commentary: fmt.Sprintf("Exploring %s, heading %s.", state.Location, dir),
	}
}

// pickDirection avoids immediately undoing the last move.
func (c *Client) pickDirection() core.Action {
	opposite := map[core.Action]core.Action{
		core.ActionUp:    core.ActionDown,
		core.ActionDown:  core.ActionUp,
		core.ActionLeft:  core.ActionRight,
		core.ActionRight: core.ActionLeft,
	}
	var avoid core.Action
	for i := len(c.history) - 1; i >= 0; i-- {
		if opp, ok := opposite[c.history[i]]; ok {
			avoid = opp
			break
		}
	}

	dirs := []core.Action{core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight}
	if avoid != "" {
		filtered := dirs[:0:0]
		for _, d := range dirs {
			if d != avoid {
				filtered = append(filtered, d)
			}
		}
		dirs = filtered
	}
	return dirs[c.rng.Intn(len(dirs))]
}

func (c *Client) record(actions []core.Action) {
	c.history = append(c.history, actions...)
	if len(c.history) > historySize {
		c.history = c.history[len(c.history)-historySize:]
	}
}
