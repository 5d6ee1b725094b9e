// Package autoplay drives an emulated game session under agent control. It
// wires together the emulation driver, the state extractor, the agent
// registry, the event hub and the control loop behind a single Session
// facade.
//
// A minimal session:
//
//	session, err := autoplay.New("red.gb", factory)
//	if err != nil {
//		log.Fatal(err)
//	}
//	session.RegisterAgent("claude", claudeClient)
//	if err := session.SetAssignment(core.AssignmentConfig{
//		PlayerAgentID: "claude",
//		Dispatch:      core.DispatchSingle,
//	}); err != nil {
//		log.Fatal(err)
//	}
//	if err := session.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer session.Stop()
package autoplay

import (
	"fmt"

	"github.com/vaibhavi8/autoplay/agent"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/emulator"
	"github.com/vaibhavi8/autoplay/extractor"
	"github.com/vaibhavi8/autoplay/hub"
	"github.com/vaibhavi8/autoplay/logging"
	"github.com/vaibhavi8/autoplay/orchestrator"
)

// Options configures a Session.
type Options struct {
	// Decoder reads game state out of the emulation. Defaults to the
	// static placeholder decoder.
	Decoder extractor.Decoder

	// History persists commentary across restarts. Defaults to an
	// in-memory store.
	History hub.HistoryStore

	// Assignment is the initial agent assignment. The referenced ids may
	// be registered after New but must exist before decisions dispatch.
	Assignment core.AssignmentConfig

	// Logger receives diagnostics from every component.
	Logger logging.Logger

	// Emulator tunes button timing and frame pacing.
	Emulator []func(o *emulator.Options)

	// Orchestrator tunes loop cadence and decision scheduling.
	Orchestrator []func(o *orchestrator.Options)
}

// Session is the process-facing handle for one emulated game session. All
// methods are safe for concurrent use. A Session owns exactly one emulation;
// run several Sessions for several games.
type Session struct {
	orch     *orchestrator.Orchestrator
	registry *agent.Registry
	events   *hub.Hub
}

// New builds a stopped Session for the ROM at romPath. The factory supplies
// the emulation backend when the session starts.
func New(romPath string, factory emulator.MachineFactory, optFns ...func(o *Options)) (*Session, error) {
	opts := Options{
		Decoder: extractor.NewStaticDecoder(),
		Logger:  logging.NewDefaultSlogLogger(),
		Assignment: core.AssignmentConfig{
			PlayerAgentID: "scripted",
			Dispatch:      core.DispatchSingle,
		},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	emuFns := append([]func(o *emulator.Options){func(o *emulator.Options) {
		o.Logger = opts.Logger
	}}, opts.Emulator...)
	driver := emulator.New(romPath, factory, emuFns...)

	ext := extractor.New(opts.Decoder, func(o *extractor.Options) {
		o.Logger = opts.Logger
	})

	events, err := hub.New(func(o *hub.Options) {
		if opts.History != nil {
			o.History = opts.History
		}
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, fmt.Errorf("event hub: %w", err)
	}

	registry := agent.NewRegistry()

	orchFns := append([]func(o *orchestrator.Options){func(o *orchestrator.Options) {
		o.Logger = opts.Logger
	}}, opts.Orchestrator...)
	orch, err := orchestrator.New(driver, ext, registry, events, opts.Assignment, orchFns...)
	if err != nil {
		return nil, err
	}

	return &Session{orch: orch, registry: registry, events: events}, nil
}

// RegisterAgent makes a client selectable by assignment under the given id.
// Registering an id twice replaces the earlier client.
func (s *Session) RegisterAgent(id string, client core.AgentClient) {
	s.registry.Register(id, client)
}

// AgentIDs lists the registered agent ids.
func (s *Session) AgentIDs() []string { return s.registry.IDs() }

// Start boots the emulation and launches the control loop.
func (s *Session) Start() error { return s.orch.Start() }

// Stop winds down the control loop and releases the emulation.
func (s *Session) Stop() error { return s.orch.Stop() }

// Status reports the session lifecycle state.
func (s *Session) Status() core.SessionStatus { return s.orch.Status() }

// FrameCount reports frames advanced since the session started.
func (s *Session) FrameCount() uint64 { return s.orch.FrameCount() }

// ExecuteAction applies one manually requested action.
func (s *Session) ExecuteAction(token, commentary string) (core.PlanResult, error) {
	return s.orch.ExecuteAction(token, commentary)
}

// ExecuteActionSequence applies a manually requested action sequence,
// serialized against agent-originated plans.
func (s *Session) ExecuteActionSequence(tokens []string, commentary string) (core.PlanResult, error) {
	return s.orch.ExecuteActionSequence(tokens, commentary)
}

// CurrentState returns the latest extracted snapshot.
func (s *Session) CurrentState() core.GameState { return s.orch.CurrentState() }

// CurrentScreenshot returns the latest captured frame as PNG bytes.
func (s *Session) CurrentScreenshot() ([]byte, error) { return s.orch.CurrentScreenshot() }

// CommentaryHistory returns the most recent commentary entries in order.
func (s *Session) CommentaryHistory(limit int) ([]core.CommentaryEntry, error) {
	return s.orch.CommentaryHistory(limit)
}

// Assignment returns the active agent assignment.
func (s *Session) Assignment() core.AssignmentConfig { return s.orch.Assignment() }

// SetAssignment swaps the agent assignment while the session runs.
func (s *Session) SetAssignment(cfg core.AssignmentConfig) error {
	return s.orch.SetAssignment(cfg)
}

// Subscribe attaches an observer to the session's event stream. Close the
// subscription when done.
func (s *Session) Subscribe() *hub.Subscription { return s.orch.Subscribe() }
