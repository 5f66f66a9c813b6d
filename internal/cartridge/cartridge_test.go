package cartridge

import "testing"

func buildHeader(prgBanks, chrBanks, flags6, flags7 uint8) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], []byte("NES\x1A"))
	h[4] = prgBanks
	h[5] = chrBanks
	h[6] = flags6
	h[7] = flags7
	return h
}

func buildROM(prgBanks, chrBanks, flags6, flags7 uint8) []byte {
	rom := buildHeader(prgBanks, chrBanks, flags6, flags7)
	rom = append(rom, make([]byte, int(prgBanks)*prgBankSize)...)
	if chrBanks > 0 {
		rom = append(rom, make([]byte, int(chrBanks)*chrBankSize)...)
	}
	return rom
}

func TestLoadRejectsBadMagic(t *testing.T) {
	rom := buildROM(1, 1, 0, 0)
	rom[0] = 'X'
	_, err := Load(rom)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestLoadRejectsZeroPRG(t *testing.T) {
	rom := buildROM(0, 1, 0, 0)
	_, err := Load(rom)
	if err == nil {
		t.Fatal("expected error for zero PRG banks")
	}
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrZeroPRG {
		t.Fatalf("expected ErrZeroPRG, got %v", err)
	}
}

func TestLoadRejectsUnsupportedMapper(t *testing.T) {
	// mapper id 4 (MMC3) is not in supportedMappers.
	rom := buildROM(1, 1, 4<<4, 0)
	_, err := Load(rom)
	if err == nil {
		t.Fatal("expected error for unsupported mapper")
	}
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrUnsupportedMapper {
		t.Fatalf("expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestLoadRejectsTruncatedPRG(t *testing.T) {
	rom := buildHeader(2, 0, 0, 0)
	rom = append(rom, make([]byte, prgBankSize)...) // claims 2 banks, has 1
	_, err := Load(rom)
	if err == nil {
		t.Fatal("expected error for truncated PRG-ROM")
	}
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestLoadSkipsTrainer(t *testing.T) {
	rom := buildHeader(1, 1, 0x04, 0) // flags6 bit 2: trainer present
	rom = append(rom, make([]byte, trainerSize)...)
	prg := make([]byte, prgBankSize)
	prg[0] = 0xAA
	rom = append(rom, prg...)
	rom = append(rom, make([]byte, chrBankSize)...)

	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0xAA {
		t.Fatalf("expected PRG byte 0xAA after skipping trainer, got %#x", got)
	}
}

func TestLoadDefaultsCHRToRAM(t *testing.T) {
	rom := buildROM(1, 0, 0, 0)
	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.chrIsRAM {
		t.Fatal("expected CHR-RAM when header declares zero CHR banks")
	}
	cart.WriteCHR(0x0000, 0x42)
	if got := cart.ReadCHR(0x0000); got != 0x42 {
		t.Fatalf("CHR-RAM write/read mismatch: got %#x", got)
	}
}

func TestMirroringFromHeader(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   Mirroring
	}{
		{0x00, MirrorHorizontal},
		{0x01, MirrorVertical},
		{0x08, MirrorFourScreen},
	}
	for _, c := range cases {
		rom := buildROM(1, 1, c.flags6, 0)
		cart, err := Load(rom)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := cart.Mirroring(); got != c.want {
			t.Fatalf("flags6=%#x: expected mirroring %v, got %v", c.flags6, c.want, got)
		}
	}
}

func TestMapperIDDecodedFromBothNibbles(t *testing.T) {
	rom := buildROM(1, 1, 2<<4, 0x40) // lower nibble 2, upper nibble 4: mapper 0x42 = 66
	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MapperID() != 66 {
		t.Fatalf("expected mapper 66, got %d", cart.MapperID())
	}
}

func TestPRGRAMMinimumSize(t *testing.T) {
	rom := buildROM(1, 1, 0, 0)
	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.prgRAM) != 8*1024 {
		t.Fatalf("expected default 8KiB PRG-RAM, got %d", len(cart.prgRAM))
	}
}

func TestAccessorsReportLoadedROMShape(t *testing.T) {
	rom := buildROM(2, 0, 0, 0) // CHR-RAM, 2 PRG banks
	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.PRGROM()) != 2*prgBankSize {
		t.Fatalf("expected %d PRG bytes, got %d", 2*prgBankSize, len(cart.PRGROM()))
	}
	if cart.CHRSize() != chrBankSize {
		t.Fatalf("expected default CHR-RAM size %d, got %d", chrBankSize, cart.CHRSize())
	}
	if !cart.CHRIsRAM() {
		t.Fatal("expected CHR-RAM for zero CHR banks")
	}
	if cart.Mirroring().String() != "horizontal" {
		t.Fatalf("expected horizontal mirroring string, got %s", cart.Mirroring().String())
	}
}
