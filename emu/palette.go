package emu

// PaletteSize is the number of CRAM entries exposed to the display.
const PaletteSize = 32

// cramLevels quantizes a 2-bit CRAM channel to the raw palette level
// reported to the display.
var cramLevels = [4]uint8{0, 40, 128, 192}

// Palette holds the quantized RGB level of every CRAM slot as last latched
// by the VDP.
type Palette struct {
	entries [PaletteSize][3]uint8
}

// Color returns the raw (R, G, B) levels of the given slot.
func (p *Palette) Color(index int) [3]uint8 {
	return p.entries[index&(PaletteSize-1)]
}

// setCRAM stores the levels for a CRAM byte in --BBGGRR format.
func (p *Palette) setCRAM(index int, c uint8) {
	p.entries[index] = [3]uint8{
		cramLevels[c&0x03],
		cramLevels[(c>>2)&0x03],
		cramLevels[(c>>4)&0x03],
	}
}

// Display receives the VDP output of the emulation core.
type Display interface {
	// SyncPalette is called after palette slot index changed and before
	// any later line that may reference it is rendered.
	SyncPalette(index int)
	// RenderLine delivers one active line of ScreenWidth indexed pixels.
	// row is only valid for the duration of the call.
	RenderLine(line int, row []uint8)
}
