package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validState() GameState {
	return GameState{
		Party: []PartyMember{
			{Name: "SQUIRTLE", Level: 5, HP: 18, MaxHP: 20},
		},
		Items: []ItemSlot{
			{Name: "Potion", Count: 1},
			{Name: "Poke Ball", Count: 5},
		},
		Location: "PALLET TOWN",
		Badges:   0,
		Money:    3000,
		Active:   "SQUIRTLE",
	}
}

func TestGameStateValidate(t *testing.T) {
	assert.NoError(t, validState().Validate())

	// Empty roster is a legal snapshot (pre-starter game).
	assert.NoError(t, GameState{}.Validate())
}

func TestGameStateValidateViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameState)
	}{
		{"oversized party", func(s *GameState) {
			s.Party = make([]PartyMember, MaxPartySize+1)
		}},
		{"hp above max", func(s *GameState) {
			s.Party[0].HP = s.Party[0].MaxHP + 1
		}},
		{"negative hp", func(s *GameState) {
			s.Party[0].HP = -1
		}},
		{"negative item count", func(s *GameState) {
			s.Items[0].Count = -2
		}},
		{"badges out of range", func(s *GameState) {
			s.Badges = MaxBadges + 1
		}},
		{"negative money", func(s *GameState) {
			s.Money = -1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validState()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestGameStateClone(t *testing.T) {
	s := validState()
	c := s.Clone()

	require.Equal(t, s, c)

	c.Party[0].HP = 1
	c.Items[0].Count = 99
	assert.Equal(t, 18, s.Party[0].HP)
	assert.Equal(t, 1, s.Items[0].Count)
}

func TestClassifyMode(t *testing.T) {
	s := validState()
	assert.Equal(t, ModeExploring, ClassifyMode(s))

	s.BattleFlag = 1
	assert.Equal(t, ModeBattling, ClassifyMode(s))

	s.BattleFlag = 0xff
	assert.Equal(t, ModeBattling, ClassifyMode(s))
}
