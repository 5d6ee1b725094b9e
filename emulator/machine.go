package emulator

import (
	"image"

	"github.com/vaibhavi8/autoplay/core"
)

// Machine is the external boundary to the emulation core. Implementations
// wrap a concrete emulator (hardware stepping, input latching, frame buffer
// access); this package never reaches below it.
type Machine interface {
	// Step advances the emulation by the given number of frames.
	Step(frames int)

	// Input latches or releases the button mapped to the given action.
	Input(a core.Action, pressed bool)

	// Frame returns the current frame buffer.
	Frame() image.Image

	// Close releases the emulation core. Called once from Stop.
	Close() error
}

// MachineFactory builds a Machine from a ROM image path. It is invoked by
// Driver.Start; a load failure is surfaced as a resource error and leaves
// the driver stopped.
type MachineFactory func(romPath string) (Machine, error)
