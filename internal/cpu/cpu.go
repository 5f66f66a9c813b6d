// Package cpu implements the 2A03 (6502-derivative) CPU interpreter.
package cpu

const (
	stackBase = 0x0100

	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the address space a CPU executes against.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, data uint8)
}

// OperandKind classifies the resolved operand an addressing mode produces.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandByte
	OperandAddress
)

// Operand is the addressing mode's output: either nothing (implied,
// accumulator), an immediate byte, or a resolved effective address.
type Operand struct {
	Kind    OperandKind
	Byte    uint8
	Address uint16
}

// CPU is the 2A03 register file and interrupt state machine. Step executes
// one full instruction and reports the cycles it consumed; the bus
// interleaves PPU and APU ticks at the reported ratio rather than the CPU
// ticking sub-instruction, which is equivalent for every externally
// observable timing the PPU/APU register interface exposes.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C, Z, I, D, V, N bool

	bus Bus

	cycles uint64

	nmiPending bool
	irqLine    bool // level-triggered: set while the APU frame IRQ is asserted
}

// New creates a CPU wired to the given bus. Call Reset before Step.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

func (c *CPU) status(bFlag bool) uint8 {
	var s uint8 = flagU
	if c.C {
		s |= flagC
	}
	if c.Z {
		s |= flagZ
	}
	if c.I {
		s |= flagI
	}
	if c.D {
		s |= flagD
	}
	if bFlag {
		s |= flagB
	}
	if c.V {
		s |= flagV
	}
	if c.N {
		s |= flagN
	}
	return s
}

func (c *CPU) setStatus(s uint8) {
	c.C = s&flagC != 0
	c.Z = s&flagZ != 0
	c.I = s&flagI != 0
	c.D = s&flagD != 0
	c.V = s&flagV != 0
	c.N = s&flagN != 0
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.bus.Read(stackBase + uint16(c.SP))
}

// Reset loads PC from the reset vector and sets the documented power-up
// register state. SP drops by 3 as if three phantom stack pushes occurred.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP -= 3
	c.C, c.Z, c.V, c.N = false, false, false, false
	c.D = false
	c.I = true
	c.nmiPending = false
	c.irqLine = false

	lo := uint16(c.bus.Read(resetVector))
	hi := uint16(c.bus.Read(resetVector + 1))
	c.PC = hi<<8 | lo
	c.cycles = 7
}

// TriggerNMI raises the edge-triggered non-maskable interrupt, serviced
// before the next instruction fetch.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// SetIRQLine sets or clears the level-triggered interrupt request line.
func (c *CPU) SetIRQLine(asserted bool) { c.irqLine = asserted }

// Cycles returns the running total of CPU cycles executed since Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Status returns the processor status byte as pushed by PHP/BRK, with the B
// flag clear (the form conventionally logged alongside PC/A/X/Y/SP).
func (c *CPU) Status() uint8 { return c.status(false) }

// SetPC forces the program counter, used to start execution at a fixed
// address (e.g. nestest's automated-mode entry point of $C000) instead of
// the reset vector.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Step services a pending interrupt if one is due, then executes exactly one
// instruction. It returns the number of CPU cycles consumed.
func (c *CPU) Step() uint64 {
	before := c.cycles

	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(nmiVector, false)
		return c.cycles - before
	}
	if c.irqLine && !c.I {
		c.serviceInterrupt(irqVector, false)
		return c.cycles - before
	}

	opcode := c.bus.Read(c.PC)
	c.PC++

	entry := &opcodeTable[opcode]
	operand, pageCrossed := c.resolveOperand(entry.mode)

	extra := entry.handler(c, operand)
	cycles := uint64(entry.cycles)
	if pageCrossed && entry.extraOnPageCross {
		cycles++
	}
	cycles += uint64(extra)

	c.cycles += cycles
	return cycles
}

// serviceInterrupt pushes PC and status and loads PC from the given vector.
// brk distinguishes a software BRK (status pushed with B set) from a
// hardware NMI/IRQ (status pushed with B clear).
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))
	c.push(c.status(brk))
	c.I = true
	lo := uint16(c.bus.Read(vector))
	hi := uint16(c.bus.Read(vector + 1))
	c.PC = hi<<8 | lo
	c.cycles += 7
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

func (c *CPU) operandValue(op Operand) uint8 {
	switch op.Kind {
	case OperandByte:
		return op.Byte
	case OperandAddress:
		return c.bus.Read(op.Address)
	default:
		return c.A
	}
}

func (c *CPU) writeOperand(op Operand, v uint8) {
	if op.Kind == OperandAddress {
		c.bus.Write(op.Address, v)
	} else {
		c.A = v
	}
}
