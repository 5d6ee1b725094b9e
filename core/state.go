package core

import (
	"fmt"
	"time"
)

// Range limits enforced on extracted snapshots. Values outside these limits
// mark a snapshot as a transient bad read, never as a hard failure.
const (
	MaxPartySize = 6
	MaxBadges    = 8
)

// PartyMember is one roster entry of the player's party.
type PartyMember struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// ItemSlot is one inventory entry.
type ItemSlot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GameState is an immutable snapshot of the emulated game, produced by the
// extractor on each poll. It is never mutated in place; a newer snapshot
// supersedes it. The orchestrator owns the current snapshot and hands clones
// to agents and subscribers.
type GameState struct {
	Party    []PartyMember `json:"party"`
	Items    []ItemSlot    `json:"items"`
	Location string        `json:"location"`
	Badges   int           `json:"badges"`
	Money    int           `json:"money"`

	// Active references the party member currently leading (by name).
	Active string `json:"active"`

	// BattleFlag is the raw battle-indicator field read from the emulation.
	// Non-zero means a battle is in progress.
	BattleFlag uint8 `json:"battle_flag"`

	// Seq is the extraction order number assigned by the extractor.
	Seq uint64 `json:"seq"`

	// ExtractedAt records when this snapshot was taken.
	ExtractedAt time.Time `json:"extracted_at"`
}

// Validate checks the snapshot against the documented ranges. A non-nil
// error marks the snapshot as a transient bad read (for example a
// mid-transition memory state); callers fall back to the previous known-good
// snapshot instead of propagating it.
func (s GameState) Validate() error {
	if len(s.Party) > MaxPartySize {
		return fmt.Errorf("party size %d exceeds %d", len(s.Party), MaxPartySize)
	}
	for _, m := range s.Party {
		if m.HP < 0 || m.MaxHP < 0 || m.HP > m.MaxHP {
			return fmt.Errorf("member %q hp %d/%d out of range", m.Name, m.HP, m.MaxHP)
		}
	}
	for _, it := range s.Items {
		if it.Count < 0 {
			return fmt.Errorf("item %q count %d negative", it.Name, it.Count)
		}
	}
	if s.Badges < 0 || s.Badges > MaxBadges {
		return fmt.Errorf("badge count %d out of range", s.Badges)
	}
	if s.Money < 0 {
		return fmt.Errorf("money %d negative", s.Money)
	}
	return nil
}

// Clone returns a deep copy so consumers cannot alias the slices owned by
// the orchestrator's current snapshot.
func (s GameState) Clone() GameState {
	out := s
	if s.Party != nil {
		out.Party = make([]PartyMember, len(s.Party))
		copy(out.Party, s.Party)
	}
	if s.Items != nil {
		out.Items = make([]ItemSlot, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

// Mode classifies what the game is currently doing. It drives agent
// selection and is derived solely from the snapshot.
type Mode int

const (
	// ModeExploring covers overworld movement, menus and dialogue.
	ModeExploring Mode = iota
	// ModeBattling covers active battles.
	ModeBattling
)

// String returns the lowercase label used in logs and wire payloads.
func (m Mode) String() string {
	if m == ModeBattling {
		return "battling"
	}
	return "exploring"
}

// ClassifyMode derives the mode from a snapshot. Battling iff the battle
// indicator is non-zero. Pure function: no state is retained between calls.
func ClassifyMode(s GameState) Mode {
	if s.BattleFlag != 0 {
		return ModeBattling
	}
	return ModeExploring
}
