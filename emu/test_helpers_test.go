package emu

// createTestROM creates a ROM of 16KB banks, each filled with its bank
// number so tests can tell which bank is mapped.
func createTestROM(banks int) []byte {
	rom := make([]byte, banks*bankSize)
	for b := 0; b < banks; b++ {
		for i := 0; i < bankSize; i++ {
			rom[b*bankSize+i] = byte(b)
		}
	}
	return rom
}

// createProgramROM creates a two bank ROM with code at $0000 and the NMI
// handler at $0066.
func createProgramROM(code, nmi []byte) []byte {
	rom := make([]byte, 2*bankSize)
	copy(rom, code)
	copy(rom[0x66:], nmi)
	return rom
}

// recordingDisplay keeps every palette sync and a copy of every line.
type recordingDisplay struct {
	syncs []int
	lines map[int][]uint8
	order []int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{lines: make(map[int][]uint8)}
}

func (d *recordingDisplay) SyncPalette(index int) {
	d.syncs = append(d.syncs, index)
}

func (d *recordingDisplay) RenderLine(line int, row []uint8) {
	d.lines[line] = append([]uint8(nil), row...)
	d.order = append(d.order, line)
}

// writeVDPRegister writes val to a VDP register through the control port.
func writeVDPRegister(v *VDP, reg, val uint8) {
	v.WriteControl(val)
	v.WriteControl(0x80 | reg)
}

// writeCRAM writes one CRAM slot through the data port.
func writeCRAM(v *VDP, index, val uint8) {
	v.WriteControl(index)
	v.WriteControl(0xC0)
	v.WriteData(val)
}

// writeVRAM writes data starting at addr through the data port.
func writeVRAM(v *VDP, addr uint16, data ...uint8) {
	v.WriteControl(uint8(addr))
	v.WriteControl(0x40 | uint8(addr>>8)&0x3F)
	for _, b := range data {
		v.WriteData(b)
	}
}
