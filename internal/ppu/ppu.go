// Package ppu implements the 2C02 picture processing unit: the
// scanline/dot pipeline, background and sprite fetch, and the memory-mapped
// register interface at $2000-$2007.
package ppu

import "github.com/nesforge/gones/internal/cartridge"

const (
	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	visibleScanlines  = 240
	preRenderLine     = 261
	postRenderLine    = 240
	vblankStartLine   = 241

	screenWidth  = 256
	screenHeight = 240
)

// ctrlFlags mirrors $2000 PPUCTRL.
type ctrlFlags struct {
	incrementAcross32 bool
	spritePatternBase uint16
	bgPatternBase     uint16
	spriteHeight16    bool
	nmiEnable         bool
}

// maskFlags mirrors $2001 PPUMASK.
type maskFlags struct {
	grayscale        bool
	showBGLeft8      bool
	showSpritesLeft8 bool
	showBackground   bool
	showSprites      bool
	emphasizeRed     bool
	emphasizeGreen   bool
	emphasizeBlue    bool
}

func (m maskFlags) renderingEnabled() bool { return m.showBackground || m.showSprites }

// statusFlags mirrors $2002 PPUSTATUS.
type statusFlags struct {
	spriteOverflow bool
	spriteZeroHit  bool
	vblank         bool
}

// spriteUnit is one of the eight secondary-OAM sprite rendering slots.
type spriteUnit struct {
	patternLo    uint8
	patternHi    uint8
	attributes   uint8
	xCounter     uint8
	isSpriteZero bool
}

// PPU is the 2C02 state machine.
type PPU struct {
	mem vram

	ctrl   ctrlFlags
	mask   maskFlags
	status statusFlags

	v, t uint16 // loopy VRAM address / temp address
	x    uint8  // fine X scroll (3 bits)
	w    bool   // write toggle

	oamAddr uint8
	oam     [256]uint8

	secondaryOAM   [32]uint8
	secondaryCount int
	spriteZeroSlot [8]bool
	spriteUnits    [8]spriteUnit

	readBuffer uint8

	scanline int
	dot      int
	frame    uint64
	oddFrame bool

	// Background shifters
	bgShiftLo, bgShiftHi         uint16
	bgAttrShiftLo, bgAttrShiftHi uint16

	// Fetch latches
	ntLatch   uint8
	atLatch   uint8
	bgLoLatch uint8
	bgHiLatch uint8

	frameBuffer [screenWidth * screenHeight]uint32

	nmiCallback   func()
	frameCallback func()
}

// New creates a PPU with no cartridge attached.
func New() *PPU {
	return &PPU{}
}

// SetCartridge installs a cartridge for CHR reads/writes and mirroring.
func (p *PPU) SetCartridge(cart *cartridge.Cartridge) {
	p.mem.cart = cart
}

// SetNMICallback registers the function invoked at the start of VBlank when
// NMI generation is enabled in PPUCTRL.
func (p *PPU) SetNMICallback(cb func()) { p.nmiCallback = cb }

// SetFrameCompleteCallback registers the function invoked once per frame,
// after the pre-render scanline's last dot.
func (p *PPU) SetFrameCompleteCallback(cb func()) { p.frameCallback = cb }

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.ctrl = ctrlFlags{}
	p.mask = maskFlags{}
	p.status = statusFlags{}
	p.v, p.t, p.x = 0, 0, 0
	p.w = false
	p.oamAddr = 0
	p.scanline = 0
	p.dot = 0
	p.frame = 0
	p.oddFrame = false
	p.readBuffer = 0
}

// Framebuffer returns the 256x240 RGBA pixel buffer for the most recently
// completed frame.
func (p *PPU) Framebuffer() *[screenWidth * screenHeight]uint32 { return &p.frameBuffer }

// FrameCount returns the number of frames rendered since Reset.
func (p *PPU) FrameCount() uint64 { return p.frame }

// SetFrameCount forces the frame counter, used to resynchronize with an
// external frame-pacing loop.
func (p *PPU) SetFrameCount(n uint64) { p.frame = n }

// Step advances the PPU by one dot (pixel clock tick).
func (p *PPU) Step() {
	p.stepFrameEvents()

	visible := p.scanline >= 0 && p.scanline < visibleScanlines
	preRender := p.scanline == preRenderLine

	if visible || preRender {
		p.stepBackground(preRender)
		p.stepSprites(preRender)
	}
	if visible {
		p.composePixel()
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > preRenderLine {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
			if p.frameCallback != nil {
				p.frameCallback()
			}
		}
	}
	// Odd-frame skip: dot 0 of scanline 0 is skipped when background
	// rendering is enabled.
	if p.scanline == 0 && p.dot == 0 && p.oddFrame && p.mask.showBackground {
		p.dot = 1
	}
}

func (p *PPU) stepFrameEvents() {
	if p.scanline == vblankStartLine && p.dot == 1 {
		p.status.vblank = true
		if p.ctrl.nmiEnable && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if p.scanline == preRenderLine && p.dot == 1 {
		p.status.vblank = false
		p.status.spriteZeroHit = false
		p.status.spriteOverflow = false
	}
}
