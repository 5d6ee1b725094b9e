package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavi8/autoplay/core"
)

// queueDecoder replays a scripted sequence of decode results.
type queueDecoder struct {
	states []core.GameState
	errs   []error
	calls  int
}

func (d *queueDecoder) Decode() (core.GameState, error) {
	i := d.calls
	d.calls++
	var err error
	if i < len(d.errs) {
		err = d.errs[i]
	}
	var s core.GameState
	if i < len(d.states) {
		s = d.states[i]
	}
	return s, err
}

func goodState(location string) core.GameState {
	return core.GameState{
		Party:    []core.PartyMember{{Name: "SQUIRTLE", Level: 5, HP: 20, MaxHP: 20}},
		Location: location,
		Money:    3000,
	}
}

func TestExtractAssignsMonotonicSeq(t *testing.T) {
	e := New(NewStaticDecoder())

	a := e.Extract()
	b := e.Extract()
	assert.Equal(t, uint64(1), a.Seq)
	assert.Equal(t, uint64(2), b.Seq)
	assert.False(t, b.ExtractedAt.IsZero())
}

func TestExtractDegradesOnRangeViolation(t *testing.T) {
	bad := goodState("GLITCH CITY")
	bad.Party[0].HP = bad.Party[0].MaxHP + 50 // mid-transition garbage

	d := &queueDecoder{states: []core.GameState{goodState("PALLET TOWN"), bad}}
	e := New(d)

	first := e.Extract()
	require.Equal(t, "PALLET TOWN", first.Location)

	second := e.Extract()
	assert.Equal(t, "PALLET TOWN", second.Location)
	assert.Equal(t, 20, second.Party[0].HP)
	assert.Equal(t, uint64(2), second.Seq, "degraded snapshot still advances the sequence")
}

func TestExtractDegradesOnDecodeError(t *testing.T) {
	d := &queueDecoder{
		states: []core.GameState{goodState("VIRIDIAN CITY"), {}},
		errs:   []error{nil, errors.New("bus error")},
	}
	e := New(d)

	e.Extract()
	s := e.Extract()
	assert.Equal(t, "VIRIDIAN CITY", s.Location)
}

func TestExtractBeforeFirstGoodRead(t *testing.T) {
	d := &queueDecoder{
		states: []core.GameState{{Badges: 99}},
		errs:   []error{nil},
	}
	e := New(d)

	s := e.Extract()
	// No known-good snapshot yet: the zero snapshot is returned, and it
	// validates.
	assert.NoError(t, s.Validate())
	assert.Empty(t, s.Party)
}

func TestLastReturnsClone(t *testing.T) {
	e := New(NewStaticDecoder())
	e.Extract()

	last := e.Last()
	last.Party[0].HP = 1
	assert.Equal(t, 20, e.Last().Party[0].HP)
}
