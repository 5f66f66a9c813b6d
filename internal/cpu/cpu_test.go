package cpu

type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8       { return b.mem[addr] }
func (b *testBus) Write(addr uint16, data uint8) { b.mem[addr] = data }

func newTestCPU(resetPC uint16) (*CPU, *testBus) {
	bus := &testBus{}
	bus.mem[resetVector] = uint8(resetPC)
	bus.mem[resetVector+1] = uint8(resetPC >> 8)
	c := New(bus)
	c.Reset()
	return c, bus
}

func load(bus *testBus, addr uint16, bytes ...uint8) {
	for i, b := range bytes {
		bus.mem[addr+uint16(i)] = b
	}
}
