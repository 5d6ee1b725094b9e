package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, err := ParseAction(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestParseActionRejectsUnknownTokens(t *testing.T) {
	for _, token := range []string{"", "a", "b", "start", "jump", "UP", "confirm "} {
		_, err := ParseAction(token)
		assert.True(t, errors.Is(err, ErrInvalidAction), "token %q", token)
	}
}

func TestParseActionsRejectsWholeSequence(t *testing.T) {
	actions, err := ParseActions([]string{"up", "up", "warp", "confirm"})
	assert.Nil(t, actions)
	assert.True(t, errors.Is(err, ErrInvalidAction))
}

func TestParseActionsOrder(t *testing.T) {
	actions, err := ParseActions([]string{"up", "up", "confirm"})
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionUp, ActionUp, ActionConfirm}, actions)
}
