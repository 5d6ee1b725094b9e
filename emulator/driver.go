package emulator

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"sync/atomic"
	"time"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/logging"
)

// Options configures button timing and frame pacing.
type Options struct {
	// HoldFrames is how many frames a button stays pressed.
	HoldFrames int
	// SettleFrames is how many frames run after release before the action
	// is considered settled.
	SettleFrames int
	// DefaultDelayFrames is the inter-action delay applied when a plan
	// carries no explicit delay.
	DefaultDelayFrames int
	// FPS converts plan delay durations into frame counts.
	FPS int
	// Logger receives driver lifecycle and execution logs.
	Logger logging.Logger
}

// Driver owns the emulation instance. All mutating methods are
// non-reentrant: the driver assumes a single logical caller and performs no
// internal locking. FrameCount is the one read-side exception and is safe
// from any goroutine.
type Driver struct {
	romPath string
	factory MachineFactory
	opts    Options

	machine    Machine
	running    bool
	frameCount atomic.Uint64
}

// New constructs a Driver for the given ROM path. The machine is not built
// until Start.
func New(romPath string, factory MachineFactory, optFns ...func(o *Options)) *Driver {
	opts := Options{
		HoldFrames:         5,
		SettleFrames:       5,
		DefaultDelayFrames: 10,
		FPS:                60,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Driver{romPath: romPath, factory: factory, opts: opts}
}

// Start verifies the ROM image, builds the machine and transitions the
// driver to running. A missing or unloadable image fails with
// core.ErrResource and leaves the driver stopped.
func (d *Driver) Start() error {
	if d.running {
		return fmt.Errorf("%w: driver already running", core.ErrInvalidState)
	}
	if _, err := os.Stat(d.romPath); err != nil {
		return fmt.Errorf("%w: rom image %q: %v", core.ErrResource, d.romPath, err)
	}
	m, err := d.factory(d.romPath)
	if err != nil {
		return fmt.Errorf("%w: load rom %q: %v", core.ErrResource, d.romPath, err)
	}
	d.machine = m
	d.running = true
	d.frameCount.Store(0)
	d.opts.Logger.Info("driver started", "rom", d.romPath)
	return nil
}

// Running reports whether the machine is live.
func (d *Driver) Running() bool { return d.running }

// FrameCount returns the number of frames advanced since Start. Safe to
// call from any goroutine.
func (d *Driver) FrameCount() uint64 { return d.frameCount.Load() }

// Advance steps the emulation by the given number of frames. Must be called
// only by the orchestrator's loop.
func (d *Driver) Advance(frames int) {
	if !d.running || frames <= 0 {
		return
	}
	d.machine.Step(frames)
	d.frameCount.Add(uint64(frames))
}

// ExecuteAction presses and releases the mapped input, returning once the
// emulation has settled. Unknown actions are rejected before any input
// reaches the machine.
func (d *Driver) ExecuteAction(a core.Action) error {
	if !d.running {
		return fmt.Errorf("%w: driver not running", core.ErrInvalidState)
	}
	if _, err := core.ParseAction(string(a)); err != nil {
		return err
	}
	d.machine.Input(a, true)
	d.Advance(d.opts.HoldFrames)
	d.machine.Input(a, false)
	d.Advance(d.opts.SettleFrames)
	return nil
}

// ExecutePlan executes each action in order with the plan's inter-action
// delay. If ctx is cancelled the remaining actions are aborted at the next
// action boundary and a partial-completion result is returned together with
// the context error; a plan is never interrupted mid-action.
func (d *Driver) ExecutePlan(ctx context.Context, plan core.ActionPlan) (core.PlanResult, error) {
	res := core.PlanResult{}
	delay := d.delayFrames(plan.Delay)
	for i, a := range plan.Actions {
		if err := ctx.Err(); err != nil {
			d.opts.Logger.Info("plan aborted", "executed", res.Executed, "total", len(plan.Actions))
			return res, err
		}
		if err := d.ExecuteAction(a); err != nil {
			return res, err
		}
		res.Executed++
		if i < len(plan.Actions)-1 {
			d.Advance(delay)
		}
	}
	res.Completed = true
	return res, nil
}

// Screenshot returns the current frame buffer encoded as PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	if !d.running {
		return nil, fmt.Errorf("%w: driver not running", core.ErrInvalidState)
	}
	frame := d.machine.Frame()
	if frame == nil {
		return nil, fmt.Errorf("%w: no frame available", core.ErrResource)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Stop releases the emulation core. Idempotent.
func (d *Driver) Stop() {
	if !d.running {
		return
	}
	d.running = false
	if err := d.machine.Close(); err != nil {
		d.opts.Logger.Warn("machine close failed", "error", err)
	}
	d.machine = nil
	d.opts.Logger.Info("driver stopped", "frames", d.frameCount.Load())
}

func (d *Driver) delayFrames(delay time.Duration) int {
	if delay <= 0 {
		return d.opts.DefaultDelayFrames
	}
	frames := int(delay * time.Duration(d.opts.FPS) / time.Second)
	if frames < 1 {
		frames = 1
	}
	return frames
}
