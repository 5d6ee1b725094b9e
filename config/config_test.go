package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2, cfg.FrameQuantum)
	assert.Equal(t, 33*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.DecisionTimeout)
	assert.Equal(t, "scripted", cfg.PlayerAgent)
	assert.Equal(t, "single", cfg.DispatchMode)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTOPLAY_ROM", "/roms/red.gb")
	t.Setenv("AUTOPLAY_TICK_INTERVAL", "10ms")
	t.Setenv("AUTOPLAY_DISPATCH", "dual")
	t.Setenv("AUTOPLAY_BATTLE_AGENT", "grok")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/roms/red.gb", cfg.ROMPath)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "dual", cfg.DispatchMode)
	assert.Equal(t, "grok", cfg.BattleAgent)
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("AUTOPLAY_TICK_INTERVAL", "not-a-duration")

	_, err := FromEnv()
	assert.Error(t, err)
}
