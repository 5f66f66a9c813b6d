package ppu

import (
	"testing"

	"github.com/nesforge/gones/internal/cartridge"
)

func testCartridge(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, 16+16*1024+8*1024)
	copy(rom[0:4], []byte("NES\x1A"))
	rom[4] = 1
	rom[5] = 1
	cart, err := cartridge.Load(rom)
	if err != nil {
		t.Fatalf("unexpected cartridge load error: %v", err)
	}
	return cart
}

func TestPPUSTATUSClearsVBlankAndWriteToggle(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.status.vblank = true
	p.w = true
	got := p.ReadRegister(0x2002)
	if got&0x80 == 0 {
		t.Fatal("expected VBlank bit set in read")
	}
	if p.status.vblank {
		t.Fatal("expected VBlank cleared after PPUSTATUS read")
	}
	if p.w {
		t.Fatal("expected write toggle cleared after PPUSTATUS read")
	}
}

func TestPPUADDRTwoWriteSequence(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Fatalf("expected v=0x2108, got %#x", p.v)
	}
}

func TestPPUDATAReadIsBufferedExceptPalette(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.mem.write(0x2000, 0x55)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	first := p.ReadRegister(0x2007)
	if first != 0 {
		t.Fatalf("expected stale buffer on first read, got %#x", first)
	}
	second := p.ReadRegister(0x2007)
	if second != 0x55 {
		t.Fatalf("expected buffered value 0x55, got %#x", second)
	}
}

func TestPPUDATAPaletteReadIsImmediate(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.mem.write(0x3F00, 0x0F)
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	got := p.ReadRegister(0x2007)
	if got != 0x0F {
		t.Fatalf("expected immediate palette read 0x0F, got %#x", got)
	}
}

func TestOAMDATAWriteIncrementsAddress(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAB)
	if p.oamAddr != 0x11 {
		t.Fatalf("expected oamAddr incremented to 0x11, got %#x", p.oamAddr)
	}
	if p.oam[0x10] != 0xAB {
		t.Fatalf("expected OAM[0x10]=0xAB, got %#x", p.oam[0x10])
	}
}

func TestNametableMirroringVertical(t *testing.T) {
	p := New()
	rom := make([]byte, 16+16*1024+8*1024)
	copy(rom[0:4], []byte("NES\x1A"))
	rom[4] = 1
	rom[5] = 1
	rom[6] = 0x01 // vertical mirroring
	cart, err := cartridge.Load(rom)
	if err != nil {
		t.Fatalf("unexpected cartridge load error: %v", err)
	}
	p.SetCartridge(cart)
	p.mem.write(0x2000, 0x11)
	if got := p.mem.read(0x2800); got != 0x11 {
		t.Fatalf("vertical mirroring: expected $2800 to mirror $2000, got %#x", got)
	}
}

func TestPaletteMirroringBackdropSlots(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.mem.write(0x3F00, 0x0F)
	if got := p.mem.read(0x3F10); got != 0x0F {
		t.Fatalf("expected $3F10 to mirror $3F00, got %#x", got)
	}
}

func TestVBlankSetAtScanline241Dot1(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.scanline = 241
	p.dot = 1
	p.Step()
	if !p.status.vblank {
		t.Fatal("expected VBlank flag set at scanline 241 dot 1")
	}
}

func TestNMIFiresWhenEnabled(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.WriteRegister(0x2000, 0x80) // enable NMI
	p.scanline = 241
	p.dot = 1
	p.Step()
	if !fired {
		t.Fatal("expected NMI callback invoked at VBlank start")
	}
}

func TestSpriteOverflowFlaggedAfterEighthMatch(t *testing.T) {
	p := New()
	p.SetCartridge(testCartridge(t))
	p.mask.showSprites = true
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 10 // y=10, all intersect scanline 10
	}
	p.scanline = 10
	p.evaluateSprites()
	if !p.status.spriteOverflow {
		t.Fatal("expected sprite overflow flagged with 9 intersecting sprites")
	}
	if p.secondaryCount != 8 {
		t.Fatalf("expected 8 sprites copied to secondary OAM, got %d", p.secondaryCount)
	}
}
