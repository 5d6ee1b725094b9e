package extractor

import "github.com/vaibhavi8/autoplay/core"

// StaticDecoder returns a fixed snapshot on every decode. It stands in for a
// real memory decoder in demos and tests: early-game party, starter items,
// no badges.
type StaticDecoder struct {
	State core.GameState
}

// NewStaticDecoder builds a decoder with a plausible early-game snapshot.
func NewStaticDecoder() *StaticDecoder {
	return &StaticDecoder{
		State: core.GameState{
			Party: []core.PartyMember{
				{Name: "SQUIRTLE", Level: 5, HP: 20, MaxHP: 20},
			},
			Items: []core.ItemSlot{
				{Name: "Potion", Count: 1},
				{Name: "Poke Ball", Count: 5},
			},
			Location: "PALLET TOWN",
			Badges:   0,
			Money:    3000,
			Active:   "SQUIRTLE",
		},
	}
}

// Decode implements Decoder.
func (d *StaticDecoder) Decode() (core.GameState, error) {
	return d.State.Clone(), nil
}
