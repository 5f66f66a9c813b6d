// Package bus implements the CPU address-space router connecting RAM, the
// PPU/APU register windows, controller ports and the cartridge.
package bus

import (
	"github.com/nesforge/gones/internal/apu"
	"github.com/nesforge/gones/internal/cartridge"
	"github.com/nesforge/gones/internal/clock"
	"github.com/nesforge/gones/internal/cpu"
	"github.com/nesforge/gones/internal/input"
	"github.com/nesforge/gones/internal/ppu"
)

// dma tracks an in-flight OAM DMA transfer: one wait cycle aligning to an
// even CPU cycle, then 256 read/write pairs.
type dma struct {
	active   bool
	page     uint8
	wait     bool
	count    int
	lastByte uint8
}

// Bus is the CPU's view of the NES address space.
type Bus struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Input *input.State

	cart *cartridge.Cartridge

	ram [0x800]uint8

	openBus uint8

	dma dma

	oddCPUCycle bool

	masterClock *clock.Clock
}

// New creates a Bus with no cartridge loaded. Load a cartridge with
// SetCartridge before calling Reset.
func New() *Bus {
	b := &Bus{
		PPU:         ppu.New(),
		APU:         apu.New(),
		Input:       input.NewState(),
		masterClock: clock.New(),
	}
	b.CPU = cpu.New(b)
	b.PPU.SetNMICallback(b.CPU.TriggerNMI)
	b.APU.SetIRQCallback(b.CPU.SetIRQLine)
	return b
}

// SetCartridge installs a cartridge, wiring it into both the CPU and PPU
// address spaces.
func (b *Bus) SetCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	b.PPU.SetCartridge(cart)
}

// Reset resets every owned component to its power-up state.
func (b *Bus) Reset() {
	b.ram = [0x800]uint8{}
	b.openBus = 0
	b.dma = dma{}
	b.oddCPUCycle = false
	b.masterClock.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()
}

// Read implements the dispatch table from $0000-$FFFF.
func (b *Bus) Read(addr uint16) uint8 {
	var value uint8
	switch {
	case addr < 0x2000:
		value = b.ram[addr&0x07FF]
	case addr < 0x4000:
		value = b.PPU.ReadRegister(0x2000 + addr&0x0007)
	case addr == 0x4015:
		value = b.APU.ReadStatus()
	case addr == 0x4016 || addr == 0x4017:
		value = b.Input.Read(addr) | (b.openBus & 0xE0)
	case addr < 0x4018:
		value = b.openBus
	case addr < 0x4020:
		value = b.openBus
	default:
		value = b.cart.ReadPRG(addr)
	}
	b.openBus = value
	return value
}

// Write implements the dispatch table from $0000-$FFFF.
func (b *Bus) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = data
	case addr < 0x4000:
		b.PPU.WriteRegister(0x2000+addr&0x0007, data)
	case addr == 0x4014:
		b.beginOAMDMA(data)
	case addr == 0x4016:
		b.Input.Write(addr, data)
	case addr < 0x4018:
		b.APU.WriteRegister(addr, data)
	case addr < 0x4020:
		// Test mode registers, unimplemented.
	default:
		b.cart.WritePRG(addr, data)
	}
}

func (b *Bus) beginOAMDMA(page uint8) {
	b.dma = dma{active: true, page: page, wait: true}
}

// Step runs one CPU instruction (or one DMA cycle if a transfer is active),
// then runs the PPU three ticks and the APU one tick per CPU cycle consumed.
// It returns the number of CPU cycles elapsed.
func (b *Bus) Step() uint64 {
	var cpuCycles uint64

	if b.dma.active {
		cpuCycles = b.stepDMA()
	} else {
		cpuCycles = b.CPU.Step()
	}

	for i := uint64(0); i < cpuCycles; i++ {
		b.oddCPUCycle = !b.oddCPUCycle
	}

	for i := uint64(0); i < cpuCycles*3; i++ {
		b.PPU.Step()
	}
	for i := uint64(0); i < cpuCycles; i++ {
		b.APU.Step()
	}

	// The CPU runs at master/clock.CPUDivisor, so each CPU cycle consumed
	// is CPUDivisor master ticks; advancing the clock here keeps the
	// master-time bookkeeping exact without re-deriving it from PPU/APU
	// tick counts.
	for i := uint64(0); i < cpuCycles*clock.CPUDivisor; i++ {
		b.masterClock.Tick()
	}

	return cpuCycles
}

// MasterTime returns the elapsed master-clock time in seconds since the
// last Reset.
func (b *Bus) MasterTime() float64 {
	return b.masterClock.Time()
}

// stepDMA advances the OAM DMA transfer by one CPU cycle and returns 1.
// The wait cycle aligns to an even CPU cycle; thereafter reads happen on
// even cycles and the buffered byte is written to OAM on odd cycles.
func (b *Bus) stepDMA() uint64 {
	if b.dma.wait {
		if !b.oddCPUCycle {
			b.dma.wait = false
		}
		return 1
	}

	if b.dma.count%2 == 0 {
		addr := uint16(b.dma.page)<<8 | uint16(b.dma.count/2)
		b.dma.lastByte = b.Read(addr)
	} else {
		b.PPU.WriteRegister(0x2004, b.dma.lastByte)
	}
	b.dma.count++
	if b.dma.count >= 512 {
		b.dma = dma{}
	}
	return 1
}
