package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vaibhavi8/autoplay/agent"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/emulator"
	"github.com/vaibhavi8/autoplay/extractor"
	"github.com/vaibhavi8/autoplay/hub"
	"github.com/vaibhavi8/autoplay/logging"
)

// SystemSource labels diagnostic commentary entries emitted by the loop
// itself rather than by an agent.
const SystemSource = "system"

// ManualSource labels commentary attached to externally requested actions.
const ManualSource = "manual"

// Options configures loop pacing and decision scheduling.
type Options struct {
	// FrameQuantum is how many frames each loop iteration advances.
	FrameQuantum int
	// TickInterval paces loop iterations. Zero or negative runs the loop
	// unpaced (tests).
	TickInterval time.Duration
	// StateEvery extracts and publishes state every N quanta, decoupled
	// from frame advancement.
	StateEvery int
	// FrameEvery captures and publishes a screenshot every N quanta.
	FrameEvery int
	// DecisionTimeout bounds every agent decision request.
	DecisionTimeout time.Duration
	// Autopilot enables agent-originated decisions. Disabled, the loop
	// still ticks, extracts and serves manual requests.
	Autopilot bool
	// Logger receives loop diagnostics.
	Logger logging.Logger
}

// Orchestrator owns the session lifecycle and the single-writer control
// loop. All exported methods are safe for concurrent use; the emulation
// itself is only ever touched from the loop goroutine (and from Start/Stop,
// which run strictly before and after it).
type Orchestrator struct {
	driver    *emulator.Driver
	extractor *extractor.Extractor
	registry  *agent.Registry
	events    *hub.Hub
	opts      Options

	mu         sync.Mutex
	status     core.SessionStatus
	assignment core.AssignmentConfig
	current    core.GameState
	haveState  bool
	lastFrame  []byte

	loopCancel context.CancelFunc
	loopDone   chan struct{}

	// manualCh is allocated per Start so a request queued while a session
	// winds down can never leak into the next session.
	manualCh chan manualRequest
}

type manualRequest struct {
	plan       core.ActionPlan
	commentary string
	result     chan manualResult
}

type manualResult struct {
	res core.PlanResult
	err error
}

type decisionResult struct {
	agentLabel string
	plan       core.ActionPlan
	err        error
}

// New constructs an Orchestrator. The assignment must validate and its
// agent ids should be registered before Start; dispatch failures at runtime
// are recovered, not fatal.
func New(
	driver *emulator.Driver,
	ext *extractor.Extractor,
	registry *agent.Registry,
	events *hub.Hub,
	assignment core.AssignmentConfig,
	optFns ...func(o *Options),
) (*Orchestrator, error) {
	opts := Options{
		FrameQuantum:    2,
		TickInterval:    time.Second / 30,
		StateEvery:      15,
		FrameEvery:      30,
		DecisionTimeout: 30 * time.Second,
		Autopilot:       true,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := assignment.Validate(); err != nil {
		return nil, fmt.Errorf("assignment: %w", err)
	}
	return &Orchestrator{
		driver:     driver,
		extractor:  ext,
		registry:   registry,
		events:     events,
		opts:       opts,
		assignment: assignment,
		status:     core.StatusStopped,
	}, nil
}

// Start transitions Stopped → Starting → Running and launches the control
// loop. It fails with core.ErrInvalidState from any state other than
// Stopped and with core.ErrResource when the ROM cannot be loaded; on
// failure the session stays Stopped.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.status != core.StatusStopped {
		status := o.status
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", core.ErrInvalidState, status)
	}
	o.status = core.StatusStarting
	o.mu.Unlock()

	if err := o.driver.Start(); err != nil {
		o.mu.Lock()
		o.status = core.StatusStopped
		o.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	manual := make(chan manualRequest, 4)

	o.mu.Lock()
	o.loopCancel = cancel
	o.loopDone = done
	o.manualCh = manual
	o.haveState = false
	o.status = core.StatusRunning
	o.mu.Unlock()

	go o.run(ctx, done, manual)
	o.opts.Logger.Info("session started")
	return nil
}

// Stop transitions Running → Stopping, lets any in-flight plan abort at the
// next action boundary, discards late agent results, releases the driver
// and settles at Stopped.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if o.status != core.StatusRunning {
		status := o.status
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot stop while %s", core.ErrInvalidState, status)
	}
	o.status = core.StatusStopping
	cancel := o.loopCancel
	done := o.loopDone
	o.mu.Unlock()

	cancel()
	<-done
	o.driver.Stop()

	o.mu.Lock()
	o.status = core.StatusStopped
	o.mu.Unlock()
	o.opts.Logger.Info("session stopped")
	return nil
}

// Status returns the current lifecycle state.
func (o *Orchestrator) Status() core.SessionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// FrameCount returns the frames advanced since Start.
func (o *Orchestrator) FrameCount() uint64 { return o.driver.FrameCount() }

// CurrentState returns a clone of the latest extracted snapshot.
func (o *Orchestrator) CurrentState() core.GameState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current.Clone()
}

// CurrentScreenshot returns the most recently captured PNG frame.
func (o *Orchestrator) CurrentScreenshot() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastFrame == nil {
		return nil, fmt.Errorf("%w: no frame captured yet", core.ErrInvalidState)
	}
	out := make([]byte, len(o.lastFrame))
	copy(out, o.lastFrame)
	return out, nil
}

// CommentaryHistory returns the most recent commentary entries in order.
func (o *Orchestrator) CommentaryHistory(limit int) ([]core.CommentaryEntry, error) {
	return o.events.History(limit)
}

// Assignment returns the active agent assignment.
func (o *Orchestrator) Assignment() core.AssignmentConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.assignment
}

// SetAssignment swaps the agent assignment. The change takes effect on the
// next dispatch decision; no restart is needed. The referenced agent ids
// must be registered.
func (o *Orchestrator) SetAssignment(cfg core.AssignmentConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, id := range cfg.AgentIDs() {
		if _, ok := o.registry.Get(id); !ok {
			return fmt.Errorf("unknown agent id %q", id)
		}
	}

	o.mu.Lock()
	o.assignment = cfg
	o.mu.Unlock()

	o.events.PublishAssignment(cfg)
	o.opts.Logger.Info("assignment changed",
		"player", cfg.PlayerAgentID, "battle", cfg.BattleAgentID, "dispatch", string(cfg.Dispatch))
	return nil
}

// Subscribe attaches a new observer to the session's event stream.
func (o *Orchestrator) Subscribe() *hub.Subscription { return o.events.Subscribe() }

// ExecuteAction applies a single manually requested action through the
// single-writer execution path.
func (o *Orchestrator) ExecuteAction(token, commentary string) (core.PlanResult, error) {
	return o.ExecuteActionSequence([]string{token}, commentary)
}

// ExecuteActionSequence applies a manually requested action sequence. The
// request preempts the next scheduled agent decision but is serialized
// through the same execution path: it is never interleaved with an
// agent-originated plan. Unknown tokens are rejected up front with
// core.ErrInvalidAction and no side effect.
func (o *Orchestrator) ExecuteActionSequence(tokens []string, commentary string) (core.PlanResult, error) {
	actions, err := core.ParseActions(tokens)
	if err != nil {
		return core.PlanResult{}, err
	}

	o.mu.Lock()
	if o.status != core.StatusRunning {
		status := o.status
		o.mu.Unlock()
		return core.PlanResult{}, fmt.Errorf("%w: cannot execute while %s", core.ErrInvalidState, status)
	}
	done := o.loopDone
	manual := o.manualCh
	o.mu.Unlock()

	req := manualRequest{
		plan:       core.ActionPlan{Actions: actions},
		commentary: commentary,
		result:     make(chan manualResult, 1),
	}

	select {
	case manual <- req:
	case <-done:
		return core.PlanResult{}, fmt.Errorf("%w: session stopped", core.ErrInvalidState)
	}

	select {
	case res := <-req.result:
		return res.res, res.err
	case <-done:
		return core.PlanResult{}, fmt.Errorf("%w: session stopped", core.ErrInvalidState)
	}
}
