package ppu

// stepBackground drives the background shifters and the nametable/attribute/
// pattern fetch pipeline for dots 1-256 and 321-336 of visible and
// pre-render scanlines, per the 2C02's documented 8-dot fetch cycle.
func (p *PPU) stepBackground(preRender bool) {
	dot := p.dot
	enabled := p.mask.renderingEnabled()

	inFetchRange := (dot >= 1 && dot <= 256) || (dot >= 321 && dot <= 336)
	if inFetchRange && enabled {
		p.shiftBackgroundRegisters()
		p.backgroundFetchCycle(dot)
	}

	if dot == 256 && enabled {
		p.incrementFineY()
	}
	if dot == 257 && enabled {
		p.reloadHorizontal()
	}
	if preRender && dot >= 280 && dot <= 304 && enabled {
		p.reloadVertical()
	}
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.bgAttrShiftLo <<= 1
	p.bgAttrShiftHi <<= 1
}

func (p *PPU) backgroundFetchCycle(dot int) {
	switch dot % 8 {
	case 1:
		p.reloadShifters()
		p.ntLatch = p.mem.read(0x2000 | (p.v & 0x0FFF))
	case 3:
		addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
		at := p.mem.read(addr)
		coarseX := p.v & 0x1F
		coarseY := (p.v >> 5) & 0x1F
		var shift uint
		if coarseX&0x02 != 0 {
			shift += 2
		}
		if coarseY&0x02 != 0 {
			shift += 4
		}
		p.atLatch = (at >> shift) & 0x03
	case 5:
		fineY := (p.v >> 12) & 0x07
		addr := p.ctrl.bgPatternBase + uint16(p.ntLatch)*16 + fineY
		p.bgLoLatch = p.mem.read(addr)
	case 7:
		fineY := (p.v >> 12) & 0x07
		addr := p.ctrl.bgPatternBase + uint16(p.ntLatch)*16 + fineY + 8
		p.bgHiLatch = p.mem.read(addr)
	case 0:
		p.incrementCoarseX()
	}
}

func (p *PPU) reloadShifters() {
	p.bgShiftLo = (p.bgShiftLo &^ 0x00FF) | uint16(p.bgLoLatch)
	p.bgShiftHi = (p.bgShiftHi &^ 0x00FF) | uint16(p.bgHiLatch)
	var lo, hi uint16
	if p.atLatch&0x01 != 0 {
		lo = 0xFF
	}
	if p.atLatch&0x02 != 0 {
		hi = 0xFF
	}
	p.bgAttrShiftLo = (p.bgAttrShiftLo &^ 0x00FF) | lo
	p.bgAttrShiftHi = (p.bgAttrShiftHi &^ 0x00FF) | hi
}

// incrementCoarseX wraps coarse X within a nametable row, toggling the
// horizontal nametable select bit on wrap.
func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementFineY performs the documented fine-Y increment with the coarse-Y
// wrap quirk at row 29 (nametable toggle) versus row 31 (silent wrap, since
// rows 30-31 hold unused attribute data on real hardware).
func (p *PPU) incrementFineY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v >> 5) & 0x1F
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

func (p *PPU) reloadHorizontal() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) reloadVertical() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// stepSprites drives secondary-OAM clearing, sprite evaluation and sprite
// pattern fetch. Evaluation and fetch are performed in a single dot rather
// than the true one-byte-per-cycle hardware cadence: the resulting secondary
// OAM contents, overflow flag and fetched pattern data are identical, and
// nothing in the register interface observes the intermediate dots.
func (p *PPU) stepSprites(preRender bool) {
	switch {
	case p.dot == 1:
		for i := range p.secondaryOAM {
			p.secondaryOAM[i] = 0xFF
		}
		p.secondaryCount = 0
		p.spriteZeroSlot = [8]bool{}
	case p.dot == 65 && p.mask.renderingEnabled():
		p.evaluateSprites()
	case p.dot == 257 && p.mask.renderingEnabled():
		p.fetchSpritePatterns()
	}
}

func (p *PPU) spriteHeight() int {
	if p.ctrl.spriteHeight16 {
		return 16
	}
	return 8
}

// evaluateSprites scans primary OAM for sprites intersecting the next
// scanline and copies up to 8 into secondary OAM. Once 8 have been found, it
// keeps checking each remaining sprite's Y byte in OAM order and sets the
// overflow flag at the next intersecting sprite, then stops. The hardware's
// misaligned-byte overflow quirk is not modelled.
func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	n := 0
	i := 0
	for i < 64 {
		y := p.oam[i*4]
		row := p.scanline - int(y)
		if row >= 0 && row < height {
			if n < 8 {
				copy(p.secondaryOAM[n*4:n*4+4], p.oam[i*4:i*4+4])
				if i == 0 {
					p.spriteZeroSlot[n] = true
				}
				n++
				i++
				continue
			}
			p.status.spriteOverflow = true
			break
		}
		i++
	}
	p.secondaryCount = n
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

func (p *PPU) fetchSpritePatterns() {
	height := p.spriteHeight()
	for j := 0; j < 8; j++ {
		if j >= p.secondaryCount {
			p.spriteUnits[j] = spriteUnit{}
			continue
		}
		y := p.secondaryOAM[j*4]
		tile := p.secondaryOAM[j*4+1]
		attr := p.secondaryOAM[j*4+2]
		x := p.secondaryOAM[j*4+3]

		row := p.scanline - int(y)
		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0

		var addr uint16
		if height == 16 {
			if flipV {
				row = 15 - row
			}
			bank := uint16(tile&0x01) * 0x1000
			tileIndex := uint16(tile &^ 0x01)
			if row >= 8 {
				tileIndex++
				row -= 8
			}
			addr = bank + tileIndex*16 + uint16(row)
		} else {
			if flipV {
				row = 7 - row
			}
			addr = p.ctrl.spritePatternBase + uint16(tile)*16 + uint16(row)
		}

		lo := p.mem.read(addr)
		hi := p.mem.read(addr + 8)
		if flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.spriteUnits[j] = spriteUnit{
			patternLo:    lo,
			patternHi:    hi,
			attributes:   attr,
			xCounter:     x,
			isSpriteZero: p.spriteZeroSlot[j],
		}
	}
}

func (p *PPU) backgroundPixel() (pixel uint8, paletteIdx uint8) {
	bit := uint(15 - p.x)
	lo := uint8(p.bgShiftLo>>bit) & 1
	hi := uint8(p.bgShiftHi>>bit) & 1
	pixel = hi<<1 | lo
	loP := uint8(p.bgAttrShiftLo>>bit) & 1
	hiP := uint8(p.bgAttrShiftHi>>bit) & 1
	paletteIdx = hiP<<1 | loP
	return
}

// foregroundPixel advances every sprite unit's x-counter/shift state by one
// dot and returns the first (highest OAM priority) non-transparent pixel.
func (p *PPU) foregroundPixel() (pixel uint8, paletteIdx uint8, inFront bool, isZero bool) {
	for i := range p.spriteUnits {
		u := &p.spriteUnits[i]
		if u.xCounter > 0 {
			u.xCounter--
			continue
		}
		bit0 := (u.patternLo & 0x80) >> 7
		bit1 := (u.patternHi & 0x80) >> 7
		u.patternLo <<= 1
		u.patternHi <<= 1
		val := bit1<<1 | bit0
		if val != 0 && pixel == 0 {
			pixel = val
			paletteIdx = u.attributes & 0x03
			inFront = u.attributes&0x20 == 0
			isZero = u.isSpriteZero
		}
	}
	return
}

// composePixel resolves the background and foreground pixels for the
// current dot into a framebuffer write, applying the priority rule and
// sprite-zero-hit detection.
func (p *PPU) composePixel() {
	x := p.dot - 1
	if x < 0 || x >= screenWidth {
		return
	}

	bgPixel, bgPalette := p.backgroundPixel()
	if !p.mask.showBackground || (x < 8 && !p.mask.showBGLeft8) {
		bgPixel = 0
	}

	fgPixel, fgPalette, fgInFront, fgIsZero := p.foregroundPixel()
	if !p.mask.showSprites || (x < 8 && !p.mask.showSpritesLeft8) {
		fgPixel = 0
	}

	var entry uint8
	switch {
	case bgPixel == 0 && fgPixel == 0:
		entry = 0
	case bgPixel == 0:
		entry = 0x10 + fgPalette*4 + fgPixel
	case fgPixel == 0:
		entry = bgPalette*4 + bgPixel
	default:
		if fgIsZero && x < 254 && (x >= 8 || p.mask.showBGLeft8 || p.mask.showSpritesLeft8) {
			p.status.spriteZeroHit = true
		}
		if fgInFront {
			entry = 0x10 + fgPalette*4 + fgPixel
		} else {
			entry = bgPalette*4 + bgPixel
		}
	}

	colorIdx := p.mem.read(0x3F00 + uint16(entry))
	p.frameBuffer[p.scanline*screenWidth+x] = rgba(colorIdx)
}
