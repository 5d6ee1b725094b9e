package main

import (
	"fmt"

	"github.com/vaibhavi8/autoplay"
	"github.com/vaibhavi8/autoplay/agent/anthropic"
	"github.com/vaibhavi8/autoplay/agent/openai"
	"github.com/vaibhavi8/autoplay/agent/scripted"
	"github.com/vaibhavi8/autoplay/config"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/emulator"
	"github.com/vaibhavi8/autoplay/hub/sqlite"
	"github.com/vaibhavi8/autoplay/logging"
	"github.com/vaibhavi8/autoplay/orchestrator"
)

// buildLogger translates config into the session logger.
func buildLogger(cfg config.Config) (logging.Logger, error) {
	level, err := logging.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	lc.Format = cfg.LogFormat
	return logging.NewLogger(lc), nil
}

// buildSession wires a Session from config: emulation backend, optional
// persistent history, every agent the environment has credentials for, and
// the configured assignment.
func buildSession(cfg config.Config, logger logging.Logger) (*autoplay.Session, func(), error) {
	cleanup := func() {}

	var history *sqlite.Store
	if cfg.HistoryDB != "" {
		var err error
		history, err = sqlite.Open(cfg.HistoryDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open history db: %w", err)
		}
		cleanup = func() { _ = history.Close() }
	}

	dispatchMode, err := core.ParseDispatchMode(cfg.DispatchMode)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	assignment := core.AssignmentConfig{
		PlayerAgentID: cfg.PlayerAgent,
		BattleAgentID: cfg.BattleAgent,
		Dispatch:      dispatchMode,
	}

	session, err := autoplay.New(cfg.ROMPath, emulator.NullFactory, func(o *autoplay.Options) {
		o.Logger = logger
		o.Assignment = assignment
		if history != nil {
			o.History = history
		}
		o.Orchestrator = []func(oo *orchestrator.Options){func(oo *orchestrator.Options) {
			oo.FrameQuantum = cfg.FrameQuantum
			oo.TickInterval = cfg.TickInterval
			oo.StateEvery = cfg.StateEvery
			oo.FrameEvery = cfg.FrameEvery
			oo.DecisionTimeout = cfg.DecisionTimeout
		}}
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	registerAgents(session, cfg)

	for _, id := range assignment.AgentIDs() {
		if !contains(session.AgentIDs(), id) {
			cleanup()
			return nil, nil, fmt.Errorf("assignment references agent %q but no credentials enable it", id)
		}
	}

	return session, cleanup, nil
}

// registerAgents makes every agent the environment can back selectable.
// The scripted agent is always available as a no-credential fallback.
func registerAgents(session *autoplay.Session, cfg config.Config) {
	session.RegisterAgent("scripted", scripted.New())

	if cfg.AnthropicAPIKey != "" {
		session.RegisterAgent("claude", anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}))
	}
	if cfg.XAIAPIKey != "" {
		session.RegisterAgent("grok", openai.New(func(o *openai.Options) {
			o.APIKey = cfg.XAIAPIKey
			o.BaseURL = cfg.XAIBaseURL
		}))
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
