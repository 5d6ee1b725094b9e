package emulator

import (
	"image"
	"image/color"
	"sync"

	"github.com/vaibhavi8/autoplay/core"
)

// NullMachine is a headless stand-in backend. It counts frames, remembers
// which inputs are held and renders a flat frame at the handheld's native
// resolution. It lets the full session pipeline run where no real emulation
// core is linked in.
type NullMachine struct {
	mu     sync.Mutex
	frames uint64
	held   map[core.Action]bool
}

// NullFactory builds a NullMachine regardless of the ROM contents.
func NullFactory(romPath string) (Machine, error) {
	return &NullMachine{held: make(map[core.Action]bool)}, nil
}

// Step implements Machine.
func (m *NullMachine) Step(frames int) {
	m.mu.Lock()
	m.frames += uint64(frames)
	m.mu.Unlock()
}

// Input implements Machine.
func (m *NullMachine) Input(a core.Action, pressed bool) {
	m.mu.Lock()
	m.held[a] = pressed
	m.mu.Unlock()
}

// Frame implements Machine. The frame shade varies with the frame counter
// so consecutive screenshots are distinguishable.
func (m *NullMachine) Frame() image.Image {
	m.mu.Lock()
	shade := uint8(m.frames % 256)
	m.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, 160, 144))
	fill := color.RGBA{R: shade, G: shade, B: shade, A: 255}
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img
}

// Close implements Machine.
func (m *NullMachine) Close() error { return nil }

// Frames reports how many frames have been stepped.
func (m *NullMachine) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

var _ Machine = (*NullMachine)(nil)
