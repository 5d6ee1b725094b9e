package autoplay_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhavi8/autoplay"
	"github.com/vaibhavi8/autoplay/agent/scripted"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/emulator"
	"github.com/vaibhavi8/autoplay/hub"
	"github.com/vaibhavi8/autoplay/orchestrator"
)

func newSession(t *testing.T) *autoplay.Session {
	t.Helper()

	romPath := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(romPath, []byte{0x00}, 0o644))

	session, err := autoplay.New(romPath, emulator.NullFactory, func(o *autoplay.Options) {
		o.Orchestrator = []func(oo *orchestrator.Options){func(oo *orchestrator.Options) {
			oo.TickInterval = time.Millisecond
		}}
	})
	require.NoError(t, err)
	session.RegisterAgent("scripted", scripted.New())

	t.Cleanup(func() {
		if session.Status() == core.StatusRunning {
			_ = session.Stop()
		}
	})
	return session
}

func TestSessionEndToEnd(t *testing.T) {
	session := newSession(t)

	sub := session.Subscribe()
	defer sub.Close()

	require.NoError(t, session.Start())
	assert.Equal(t, core.StatusRunning, session.Status())

	// The scripted agent narrates every plan, so commentary must flow
	// without any external API.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sub.Events():
			if ev.Type == hub.EventCommentaryAdded {
				require.NotNil(t, ev.Commentary)
				assert.NotEmpty(t, ev.Commentary.Text)
				assert.Greater(t, ev.Commentary.Seq, uint64(0))
				require.NoError(t, session.Stop())
				return
			}
		case <-deadline:
			t.Fatal("no commentary observed")
		}
	}
}

func TestSessionManualControl(t *testing.T) {
	session := newSession(t)

	require.NoError(t, session.SetAssignment(core.AssignmentConfig{
		PlayerAgentID: "scripted",
		Dispatch:      core.DispatchSingle,
	}))
	require.NoError(t, session.Start())

	res, err := session.ExecuteActionSequence([]string{"up", "confirm"}, "checking the door")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Executed)
	assert.True(t, res.Completed)

	history, err := session.CommentaryHistory(10)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	state := session.CurrentState()
	assert.NotEmpty(t, state.Party)
	assert.Greater(t, session.FrameCount(), uint64(0))
}
