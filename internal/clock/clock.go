// Package clock implements the master clock and rate dividers that keep the
// CPU, PPU and APU in phase with each other.
package clock

// MasterHz is the NTSC master clock rate in Hz.
const MasterHz = 21_477_272

// CPUDivisor and PPUDivisor express each domain's rate relative to the
// master clock: the CPU runs at master/12, the PPU at master/4. The APU's
// frame sequencer runs at CPU rate.
const (
	CPUDivisor = 12
	PPUDivisor = 4
)

// Clock holds a real-valued master time in seconds. Using a double for time
// keeps arbitrary rate ratios (12, 4, a host sample rate that doesn't divide
// the master rate evenly) in exact phase without integer GCD bookkeeping.
type Clock struct {
	time float64
	rate float64
}

// New creates a master clock ticking at MasterHz.
func New() *Clock {
	return &Clock{rate: MasterHz}
}

// Reset zeroes the master time.
func (c *Clock) Reset() {
	c.time = 0
}

// Tick advances the master clock by one master cycle.
func (c *Clock) Tick() {
	c.time += 1.0 / c.rate
}

// Time returns the current master time in seconds.
func (c *Clock) Time() float64 {
	return c.time
}

// Divider polls a clock at a given rate; it reports true on master ticks
// where the divided cycle counter has advanced since the last poll.
type Divider struct {
	rate    float64
	cycles  uint64
}

// NewDivider creates a divider running at rate Hz.
func NewDivider(rate float64) *Divider {
	return &Divider{rate: rate}
}

// Reset zeroes the divider's cycle counter.
func (d *Divider) Reset() {
	d.cycles = 0
}

// Poll reports whether the divider's cycle counter has advanced given the
// clock's current time, and advances it if so.
func (d *Divider) Poll(c *Clock) bool {
	target := uint64(c.Time() * d.rate)
	if target > d.cycles {
		d.cycles = target
		return true
	}
	return false
}

// Cycles returns the divider's current cycle count.
func (d *Divider) Cycles() uint64 {
	return d.cycles
}
