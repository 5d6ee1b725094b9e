package orchestrator

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhavi8/autoplay/agent"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/emulator"
	"github.com/vaibhavi8/autoplay/extractor"
	"github.com/vaibhavi8/autoplay/hub"
)

type fakeMachine struct {
	mu     sync.Mutex
	inputs []string

	// onInput, when set before Start, observes every input event. It runs
	// on the loop goroutine, so blocking in it pins the loop mid-action.
	onInput func(a core.Action, pressed bool)
}

func (m *fakeMachine) Step(frames int) {}

func (m *fakeMachine) Input(a core.Action, pressed bool) {
	if pressed {
		m.mu.Lock()
		m.inputs = append(m.inputs, string(a))
		m.mu.Unlock()
	}
	if m.onInput != nil {
		m.onInput(a, pressed)
	}
}

func (m *fakeMachine) Frame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 160, 144))
}

func (m *fakeMachine) Close() error { return nil }

func (m *fakeMachine) pressed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}

type stubAgent struct {
	name  string
	plan  core.ActionPlan
	err   error
	block bool
	calls chan core.Role
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Decide(ctx context.Context, state core.GameState, role core.Role) (core.ActionPlan, error) {
	if s.block {
		<-ctx.Done()
		return core.ActionPlan{}, ctx.Err()
	}
	if s.calls != nil {
		select {
		case s.calls <- role:
		default:
		}
	}
	if s.err != nil {
		return core.ActionPlan{}, s.err
	}
	return s.plan, nil
}

func writeROM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(path, []byte{0x00}, 0o644))
	return path
}

func idlePlan() core.ActionPlan {
	return core.ActionPlan{
		Actions:    []core.Action{core.ActionConfirm},
		Commentary: "pressing on",
	}
}

type fixture struct {
	orch    *Orchestrator
	machine *fakeMachine
	events  *hub.Hub
}

func newFixture(t *testing.T, decoder extractor.Decoder, clients map[string]core.AgentClient, cfg core.AssignmentConfig, optFns ...func(o *Options)) *fixture {
	t.Helper()

	machine := &fakeMachine{}
	driver := emulator.New(writeROM(t), func(string) (emulator.Machine, error) {
		return machine, nil
	})

	registry := agent.NewRegistry()
	for id, c := range clients {
		registry.Register(id, c)
	}

	events, err := hub.New()
	require.NoError(t, err)

	base := []func(o *Options){func(o *Options) {
		o.TickInterval = time.Millisecond
		o.DecisionTimeout = time.Second
	}}
	orch, err := New(driver, extractor.New(decoder), registry, events, cfg, append(base, optFns...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if orch.Status() == core.StatusRunning {
			_ = orch.Stop()
		}
	})
	return &fixture{orch: orch, machine: machine, events: events}
}

func singleAssignment(id string) core.AssignmentConfig {
	return core.AssignmentConfig{PlayerAgentID: id, Dispatch: core.DispatchSingle}
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"))

	assert.Equal(t, core.StatusStopped, f.orch.Status())

	require.NoError(t, f.orch.Start())
	assert.Equal(t, core.StatusRunning, f.orch.Status())

	err := f.orch.Start()
	assert.ErrorIs(t, err, core.ErrInvalidState)

	require.NoError(t, f.orch.Stop())
	assert.Equal(t, core.StatusStopped, f.orch.Status())

	err = f.orch.Stop()
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestRestartAfterStop(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"))

	require.NoError(t, f.orch.Start())
	require.NoError(t, f.orch.Stop())
	require.NoError(t, f.orch.Start())
	assert.Equal(t, core.StatusRunning, f.orch.Status())
}

func TestStartMissingROM(t *testing.T) {
	driver := emulator.New(filepath.Join(t.TempDir(), "missing.gb"), func(string) (emulator.Machine, error) {
		return &fakeMachine{}, nil
	})
	registry := agent.NewRegistry()
	registry.Register("a", &stubAgent{name: "A", plan: idlePlan()})
	events, err := hub.New()
	require.NoError(t, err)

	orch, err := New(driver, extractor.New(extractor.NewStaticDecoder()), registry, events, singleAssignment("a"))
	require.NoError(t, err)

	err = orch.Start()
	assert.ErrorIs(t, err, core.ErrResource)
	assert.Equal(t, core.StatusStopped, orch.Status())
}

func TestManualSequence(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
	})
	require.NoError(t, f.orch.Start())

	res, err := f.orch.ExecuteActionSequence([]string{"up", "up", "confirm"}, "walking north")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 3, res.Executed)

	assert.Equal(t, []string{"up", "up", "confirm"}, f.machine.pressed())

	history, err := f.orch.CommentaryHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "walking north", history[0].Text)
	assert.Equal(t, ManualSource, history[0].Source)
}

func TestManualRejectsUnknownToken(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
	})
	require.NoError(t, f.orch.Start())

	_, err := f.orch.ExecuteActionSequence([]string{"up", "jump"}, "")
	assert.ErrorIs(t, err, core.ErrInvalidAction)
	assert.Empty(t, f.machine.pressed())
}

func TestManualSequenceBroadcastsStateOnce(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
		o.StateEvery = 0
		o.FrameEvery = 0
	})

	sub := f.orch.Subscribe()
	defer sub.Close()

	require.NoError(t, f.orch.Start())

	_, err := f.orch.ExecuteActionSequence([]string{"up", "up", "confirm"}, "walking north")
	require.NoError(t, err)

	counts := make(map[hub.EventType]int)
	for drained := false; !drained; {
		select {
		case ev := <-sub.Events():
			counts[ev.Type]++
		default:
			drained = true
		}
	}

	// One snapshot goes out when the loop starts; the sequence itself must
	// produce exactly one more, after the last action, not one per action.
	assert.Equal(t, 2, counts[hub.EventStateUpdated])
	assert.Equal(t, 1, counts[hub.EventCommentaryAdded])
}

func TestStopMidPlanAbortsAtBoundary(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
	})

	gate := make(chan struct{})
	reached := make(chan struct{})
	presses := 0
	f.machine.onInput = func(a core.Action, pressed bool) {
		if !pressed {
			return
		}
		presses++
		if presses == 2 {
			close(reached)
			<-gate
		}
	}
	require.NoError(t, f.orch.Start())

	type outcome struct {
		res core.PlanResult
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := f.orch.ExecuteActionSequence([]string{"up", "up", "up"}, "marching on")
		resCh <- outcome{res: res, err: err}
	}()

	<-reached

	stopErr := make(chan error, 1)
	go func() { stopErr <- f.orch.Stop() }()

	require.Eventually(t, func() bool {
		return f.orch.Status() == core.StatusStopping
	}, 2*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)

	out := <-resCh
	require.Error(t, out.err)
	assert.False(t, out.res.Completed)
	assert.Equal(t, 2, out.res.Executed, "the in-flight action finishes, the rest is abandoned")

	require.NoError(t, <-stopErr)
	assert.Equal(t, core.StatusStopped, f.orch.Status())
	assert.Equal(t, []string{"up", "up"}, f.machine.pressed())
}

func TestStaleManualRequestDiscardedOnRestart(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
	})

	gate := make(chan struct{})
	reached := make(chan struct{})
	var once sync.Once
	f.machine.onInput = func(a core.Action, pressed bool) {
		if pressed {
			once.Do(func() {
				close(reached)
				<-gate
			})
		}
	}
	require.NoError(t, f.orch.Start())

	firstErr := make(chan error, 1)
	go func() {
		_, err := f.orch.ExecuteAction("up", "")
		firstErr <- err
	}()
	<-reached

	// A second request queues up behind the pinned plan and must die with
	// this session instead of firing after a restart.
	secondErr := make(chan error, 1)
	go func() {
		_, err := f.orch.ExecuteActionSequence([]string{"confirm", "confirm", "confirm"}, "")
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	stopErr := make(chan error, 1)
	go func() { stopErr <- f.orch.Stop() }()

	require.Eventually(t, func() bool {
		return f.orch.Status() == core.StatusStopping
	}, 2*time.Second, time.Millisecond)
	close(gate)

	require.NoError(t, <-firstErr)
	assert.ErrorIs(t, <-secondErr, core.ErrInvalidState)
	require.NoError(t, <-stopErr)

	require.NoError(t, f.orch.Start())
	require.Eventually(t, func() bool {
		return f.orch.FrameCount() > 0
	}, 2*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, f.orch.Stop())

	assert.Equal(t, []string{"up"}, f.machine.pressed())
}

func TestManualRequiresRunning(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"))

	_, err := f.orch.ExecuteAction("confirm", "")
	assert.ErrorIs(t, err, core.ErrInvalidState)
}

func TestAutopilotDrivesAgent(t *testing.T) {
	calls := make(chan core.Role, 1)
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "Scout", plan: idlePlan(), calls: calls},
	}, singleAssignment("a"))
	require.NoError(t, f.orch.Start())

	select {
	case role := <-calls:
		assert.Equal(t, core.RolePlayer, role)
	case <-time.After(2 * time.Second):
		t.Fatal("agent was never consulted")
	}

	assert.Eventually(t, func() bool {
		history, err := f.orch.CommentaryHistory(50)
		if err != nil {
			return false
		}
		for _, e := range history {
			if e.Source == "Scout" && e.Text == "pressing on" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

// flipDecoder serves a snapshot whose battle flag can change while the
// session runs.
type flipDecoder struct {
	mu    sync.Mutex
	state core.GameState
}

func (d *flipDecoder) Decode() (core.GameState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone(), nil
}

func (d *flipDecoder) setBattle(flag uint8) {
	d.mu.Lock()
	d.state.BattleFlag = flag
	d.mu.Unlock()
}

func TestDualModeRoutesBattleAgent(t *testing.T) {
	playerCalls := make(chan core.Role, 1)
	battleCalls := make(chan core.Role, 1)
	decoder := &flipDecoder{state: extractor.NewStaticDecoder().State}
	f := newFixture(t, decoder, map[string]core.AgentClient{
		"explorer": &stubAgent{name: "Explorer", plan: idlePlan(), calls: playerCalls},
		"fighter":  &stubAgent{name: "Fighter", plan: idlePlan(), calls: battleCalls},
	}, core.AssignmentConfig{
		PlayerAgentID: "explorer",
		BattleAgentID: "fighter",
		Dispatch:      core.DispatchDual,
	})
	require.NoError(t, f.orch.Start())

	select {
	case role := <-playerCalls:
		assert.Equal(t, core.RolePlayer, role)
	case <-time.After(2 * time.Second):
		t.Fatal("player agent was never consulted")
	}

	// A battle starts mid-session; the next decisions must go to the
	// battle seat without a restart.
	decoder.setBattle(1)

	select {
	case role := <-battleCalls:
		assert.Equal(t, core.RoleBattle, role)
	case <-time.After(2 * time.Second):
		t.Fatal("battle agent was never consulted")
	}

	assert.Eventually(t, func() bool {
		history, err := f.orch.CommentaryHistory(50)
		if err != nil {
			return false
		}
		for _, e := range history {
			if e.Source == "Fighter as battle" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAgentFailureKeepsRunning(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "Flaky", err: errors.New("upstream unavailable")},
	}, singleAssignment("a"))
	require.NoError(t, f.orch.Start())

	assert.Eventually(t, func() bool {
		history, err := f.orch.CommentaryHistory(50)
		if err != nil {
			return false
		}
		for _, e := range history {
			if e.Source == SystemSource && strings.Contains(e.Text, "decision failed") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, core.StatusRunning, f.orch.Status())
}

func TestAgentTimeoutDiagnostic(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "Stuck", block: true},
	}, singleAssignment("a"), func(o *Options) {
		o.DecisionTimeout = 5 * time.Millisecond
	})
	require.NoError(t, f.orch.Start())

	assert.Eventually(t, func() bool {
		history, err := f.orch.CommentaryHistory(50)
		if err != nil {
			return false
		}
		for _, e := range history {
			if e.Source == SystemSource && strings.Contains(e.Text, "agent timeout") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, core.StatusRunning, f.orch.Status())
}

func TestEmptyCommentaryRejected(t *testing.T) {
	plan := core.ActionPlan{Actions: []core.Action{core.ActionConfirm}}
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "Mute", plan: plan},
	}, singleAssignment("a"))
	require.NoError(t, f.orch.Start())

	assert.Eventually(t, func() bool {
		history, err := f.orch.CommentaryHistory(50)
		if err != nil {
			return false
		}
		for _, e := range history {
			if e.Source == SystemSource && strings.Contains(e.Text, "without commentary") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSetAssignment(t *testing.T) {
	secondCalls := make(chan core.Role, 1)
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"first":  &stubAgent{name: "First", plan: idlePlan()},
		"second": &stubAgent{name: "Second", plan: idlePlan(), calls: secondCalls},
	}, singleAssignment("first"))
	require.NoError(t, f.orch.Start())

	err := f.orch.SetAssignment(singleAssignment("nobody"))
	assert.Error(t, err)

	sub := f.orch.Subscribe()
	defer sub.Close()

	require.NoError(t, f.orch.SetAssignment(singleAssignment("second")))
	assert.Equal(t, "second", f.orch.Assignment().PlayerAgentID)

	select {
	case <-secondCalls:
	case <-time.After(2 * time.Second):
		t.Fatal("reassigned agent was never consulted")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub.Events():
			if ev.Type == hub.EventAssignmentChanged {
				require.NotNil(t, ev.Assignment)
				assert.Equal(t, "second", ev.Assignment.PlayerAgentID)
				return
			}
		case <-deadline:
			t.Fatal("assignment change was never broadcast")
		}
	}
}

func TestStateAndScreenshotQueries(t *testing.T) {
	f := newFixture(t, extractor.NewStaticDecoder(), map[string]core.AgentClient{
		"a": &stubAgent{name: "A", plan: idlePlan()},
	}, singleAssignment("a"), func(o *Options) {
		o.Autopilot = false
	})

	_, err := f.orch.CurrentScreenshot()
	assert.ErrorIs(t, err, core.ErrInvalidState)

	require.NoError(t, f.orch.Start())

	assert.Eventually(t, func() bool {
		return f.orch.CurrentState().Seq > 0
	}, 2*time.Second, 5*time.Millisecond)

	png, err := f.orch.CurrentScreenshot()
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	state := f.orch.CurrentState()
	assert.NotEmpty(t, state.Party)
}
