// Package emulator wires the cartridge, bus, CPU, PPU, APU and input ports
// into the top-level machine a host application drives frame by frame.
package emulator

import (
	"github.com/nesforge/gones/internal/bus"
	"github.com/nesforge/gones/internal/cartridge"
)

// Player identifies which controller port an input update targets.
type Player int

const (
	Player1 Player = iota
	Player2
)

// Emulator is the externally-facing NES machine: load a ROM, then drive it
// with Step or RunUntilFrame and pull Framebuffer/DrainAudio between calls.
type Emulator struct {
	bus *bus.Bus
}

// New constructs an Emulator from raw iNES bytes. A malformed header or an
// unsupported mapper id is reported as a *cartridge.LoadError; the returned
// Emulator is nil in that case and unusable. Once constructed, Step never
// fails.
func New(romBytes []byte, sampleRate int) (*Emulator, error) {
	cart, err := cartridge.Load(romBytes)
	if err != nil {
		return nil, err
	}

	b := bus.New()
	b.APU.SetSampleRate(sampleRate)
	b.SetCartridge(cart)
	b.Reset()

	return &Emulator{bus: b}, nil
}

// Reset requests a RESET interrupt on the CPU, silences the APU and clears
// bus-level latch state. It does not reload the cartridge.
func (e *Emulator) Reset() {
	e.bus.Reset()
}

// Step advances the machine by one CPU instruction boundary (or one DMA
// transfer cycle, if a transfer is in flight), running the PPU and APU the
// proportional number of ticks for the CPU cycles consumed. It returns the
// number of CPU cycles elapsed.
func (e *Emulator) Step() uint64 {
	return e.bus.Step()
}

// RunUntilFrame steps the machine until the PPU's frame counter advances by
// one, i.e. until the frame currently being drawn completes.
func (e *Emulator) RunUntilFrame() {
	start := e.bus.PPU.FrameCount()
	for e.bus.PPU.FrameCount() == start {
		e.bus.Step()
	}
}

// UpdateController replaces the live button state for one controller port.
// buttons is a bitmap in A,B,Select,Start,Up,Down,Left,Right order (bits
// 0..7), matching the controller's shift-register read order.
func (e *Emulator) UpdateController(player Player, buttons uint8) {
	switch player {
	case Player1:
		e.bus.Input.Controller1.SetButtonBitmap(buttons)
	case Player2:
		e.bus.Input.Controller2.SetButtonBitmap(buttons)
	}
}

// Framebuffer returns the current frame as 256*240 RGBA pixels, row-major,
// converted from the PPU's packed 0xAARRGGBB representation.
func (e *Emulator) Framebuffer() []byte {
	src := e.bus.PPU.Framebuffer()
	out := make([]byte, len(src)*4)
	for i, px := range src {
		out[i*4+0] = uint8(px >> 16)
		out[i*4+1] = uint8(px >> 8)
		out[i*4+2] = uint8(px)
		out[i*4+3] = 0xFF
	}
	return out
}

// DrainAudio returns and clears the APU's accumulated sample buffer.
func (e *Emulator) DrainAudio() []float32 {
	return e.bus.APU.DrainAudio()
}
