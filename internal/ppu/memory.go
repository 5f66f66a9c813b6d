package ppu

import "github.com/nesforge/gones/internal/cartridge"

// vram holds the PPU's own address space: pattern tables are owned by the
// cartridge and reached through Cart, nametables are 2KiB of on-board RAM
// mirrored per the cartridge's reported mirroring mode, and palette RAM is
// 32 bytes with the documented backdrop-color mirroring.
type vram struct {
	nametables [0x800]uint8
	paletteRAM [32]uint8
	cart       *cartridge.Cartridge
}

func (m *vram) read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return m.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return m.nametables[m.nametableIndex(addr)]
	default:
		return m.paletteRAM[paletteIndex(addr)]
	}
}

func (m *vram) write(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		m.cart.WriteCHR(addr, value)
	case addr < 0x3F00:
		m.nametables[m.nametableIndex(addr)] = value
	default:
		m.paletteRAM[paletteIndex(addr)] = value
	}
}

// nametableIndex folds a $2000-$3EFF address into the 2KiB on-board
// nametable RAM according to the cartridge's mirroring mode.
func (m *vram) nametableIndex(addr uint16) uint16 {
	addr = (addr - 0x2000) & 0x0FFF
	table := addr / 0x400
	offset := addr % 0x400

	var mirror cartridge.Mirroring
	if m.cart != nil {
		mirror = m.cart.Mirroring()
	}

	switch mirror {
	case cartridge.MirrorVertical:
		return (table%2)*0x400 + offset
	case cartridge.MirrorSingleLower:
		return offset
	case cartridge.MirrorSingleUpper:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		// No cartridge in the supported mapper set actually wires the
		// extra 2KiB of VRAM four-screen mode assumes, so fold it onto
		// the two physical nametables the same way vertical mirroring
		// does rather than indexing past the 2KiB RAM.
		return (table%2)*0x400 + offset
	default: // horizontal
		return (table/2)*0x400 + offset
	}
}

// paletteIndex folds a $3F00-$3FFF address into the 32-byte palette RAM,
// collapsing the four background-color mirror slots.
func paletteIndex(addr uint16) uint16 {
	idx := (addr - 0x3F00) % 32
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}
