package dvi

// Pixel is an RGB565 value as held in a line buffer.
type Pixel uint16

// MakePixel packs 8-bit channels into RGB565.
func MakePixel(r, g, b uint8) Pixel {
	return Pixel(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB444 returns the 4-bit channels the serializer transmits.
func (p Pixel) RGB444() (r, g, b uint8) {
	return uint8(p>>12) & 0x0F, uint8(p>>7) & 0x0F, uint8(p>>1) & 0x0F
}

// LineWidth is the width of a line buffer in pixels. Each pixel is sent
// twice per output line.
const LineWidth = 320

// LineBuffer is one row of pixels travelling from the producer to the
// serializer. It is owned by whoever holds it last: the pool, the
// producer between GetLineBuffer and SetLineBuffer, or the engine.
type LineBuffer struct {
	pix [LineWidth]Pixel
	row int
}

// Data returns the pixels of the buffer.
func (b *LineBuffer) Data() []Pixel {
	return b.pix[:]
}

// Row returns the display row the buffer was submitted for.
func (b *LineBuffer) Row() int {
	return b.row
}

// AudioSample is one interleaved stereo frame.
type AudioSample struct {
	L, R int16
}
