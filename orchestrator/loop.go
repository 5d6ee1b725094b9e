package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/dispatch"
	"github.com/vaibhavi8/autoplay/logging"
)

// run is the single-writer control loop. It is the only goroutine that
// advances the emulation, executes plans, extracts state and captures
// frames; agent decisions are computed in worker goroutines and applied
// here in arrival order. The manual channel belongs to this run only;
// anything still queued when the loop exits dies with it.
func (o *Orchestrator) run(ctx context.Context, done chan struct{}, manual <-chan manualRequest) {
	defer close(done)

	var ticker *time.Ticker
	if o.opts.TickInterval > 0 {
		ticker = time.NewTicker(o.opts.TickInterval)
		defer ticker.Stop()
	}

	// Agent decisions land here; buffered so a late worker never blocks
	// after the loop exits.
	decisionCh := make(chan decisionResult, 1)
	inFlight := false

	o.extractAndPublish()
	o.captureFrame()

	quanta := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case req := <-manual:
			o.serveManual(ctx, req)
			continue
		default:
		}

		select {
		case dec := <-decisionCh:
			inFlight = false
			o.applyDecision(ctx, dec)
			continue
		default:
		}

		o.driver.Advance(o.opts.FrameQuantum)
		quanta++

		if o.opts.StateEvery > 0 && quanta%o.opts.StateEvery == 0 {
			o.extractAndPublish()
		}
		if o.opts.FrameEvery > 0 && quanta%o.opts.FrameEvery == 0 {
			o.captureFrame()
		}

		if o.opts.Autopilot && !inFlight {
			if o.scheduleDecision(ctx, decisionCh) {
				inFlight = true
			}
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}
}

// serveManual executes an externally requested plan and broadcasts one
// post-execution state update. Supplied commentary is published before
// execution so observers see the stated intent first.
func (o *Orchestrator) serveManual(ctx context.Context, req manualRequest) {
	if req.commentary != "" {
		o.publishCommentary(req.commentary, ManualSource)
	}

	res, err := o.driver.ExecutePlan(ctx, req.plan)
	o.extractAndPublish()

	req.result <- manualResult{res: res, err: err}
}

// applyDecision publishes an arrived plan's commentary, executes the plan
// and broadcasts the post-execution state. Decision failures surface as
// diagnostic commentary; the session keeps running.
func (o *Orchestrator) applyDecision(ctx context.Context, dec decisionResult) {
	if dec.err != nil {
		o.opts.Logger.Warn("agent decision failed", "agent", dec.agentLabel, "error", dec.err)
		o.publishCommentary(
			fmt.Sprintf("[%s] decision failed: %v", dec.agentLabel, dec.err),
			SystemSource,
		)
		return
	}

	o.publishCommentary(dec.plan.Commentary, dec.agentLabel)

	start := time.Now()
	res, err := o.driver.ExecutePlan(ctx, dec.plan)
	if sl, ok := o.opts.Logger.(*logging.SessionLogger); ok {
		sl.LogPlanExecution(dec.agentLabel, res.Executed, len(dec.plan.Actions), res.Completed, time.Since(start))
	} else if err != nil {
		o.opts.Logger.Warn("plan aborted", "agent", dec.agentLabel, "executed", res.Executed, "error", err)
	}

	o.extractAndPublish()
}

// scheduleDecision picks the agent for the current mode and launches a
// bounded decision worker. Reports whether a worker was launched.
func (o *Orchestrator) scheduleDecision(ctx context.Context, decisionCh chan decisionResult) bool {
	o.mu.Lock()
	if !o.haveState {
		o.mu.Unlock()
		return false
	}
	state := o.current.Clone()
	cfg := o.assignment
	o.mu.Unlock()

	mode := core.ClassifyMode(state)
	role, id := dispatch.SelectAgent(mode, cfg)
	client, ok := o.registry.Get(id)
	if !ok {
		o.opts.Logger.Warn("no agent registered for id", "id", id, "role", string(role))
		return false
	}

	label := client.Name()
	if cfg.Dispatch == core.DispatchDual {
		label = fmt.Sprintf("%s as %s", client.Name(), role)
	}

	go func() {
		dctx, cancel := context.WithTimeout(ctx, o.opts.DecisionTimeout)
		defer cancel()

		start := time.Now()
		plan, err := client.Decide(dctx, state, role)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %s after %s", core.ErrAgentTimeout, client.Name(), o.opts.DecisionTimeout)
			} else if !errors.Is(err, core.ErrAgent) && !errors.Is(err, core.ErrAgentTimeout) {
				err = fmt.Errorf("%w: %v", core.ErrAgent, err)
			}
		} else if plan.Commentary == "" {
			err = fmt.Errorf("%w: %s returned a plan without commentary", core.ErrAgent, client.Name())
		}
		o.logDecision(client.Name(), role, len(plan.Actions), time.Since(start), err)

		decisionCh <- decisionResult{agentLabel: label, plan: plan, err: err}
	}()
	return true
}

func (o *Orchestrator) logDecision(name string, role core.Role, actions int, dur time.Duration, err error) {
	if sl, ok := o.opts.Logger.(*logging.SessionLogger); ok {
		sl.LogDecision(name, string(role), actions, dur, err)
	}
}

// extractAndPublish takes a fresh snapshot, caches it and broadcasts it.
func (o *Orchestrator) extractAndPublish() {
	state := o.extractor.Extract()

	o.mu.Lock()
	o.current = state
	o.haveState = true
	o.mu.Unlock()

	o.events.PublishState(state)
}

// captureFrame grabs a screenshot, caches it and broadcasts it. Capture
// failures are logged and skipped; the loop never stops over a frame.
func (o *Orchestrator) captureFrame() {
	frame, err := o.driver.Screenshot()
	if err != nil {
		o.opts.Logger.Warn("screenshot capture failed", "error", err)
		return
	}

	o.mu.Lock()
	o.lastFrame = frame
	o.mu.Unlock()

	o.events.PublishFrame(frame)
}

func (o *Orchestrator) publishCommentary(text, source string) {
	if _, err := o.events.PublishCommentary(text, source); err != nil {
		o.opts.Logger.Warn("commentary publish failed", "source", source, "error", err)
	}
}
