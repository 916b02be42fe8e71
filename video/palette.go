package video

import "github.com/user-none/picomkiii/dvi"

// PaletteSize is the number of slots in the emulated palette.
const PaletteSize = 32

// PaletteSource exposes the raw per-channel levels of each palette slot.
type PaletteSource interface {
	Color(index int) [3]uint8
}

// PixelCache holds the output pixel for every palette slot.
type PixelCache [PaletteSize]dvi.Pixel

// levelTable maps the four raw levels the core produces onto full-range
// intensities. Any other level reads as 0.
var levelTable = [256]uint8{
	0:   0,
	40:  85,
	128: 170,
	192: 255,
}

// Converter keeps a PixelCache in step with a PaletteSource. Sync is the
// only writer of the cache.
type Converter struct {
	src   PaletteSource
	cache PixelCache
}

func NewConverter(src PaletteSource) *Converter {
	return &Converter{src: src}
}

// Sync re-reads slot index from the source and stores the converted pixel.
func (c *Converter) Sync(index int) {
	index &= PaletteSize - 1
	rgb := c.src.Color(index)
	c.cache[index] = dvi.MakePixel(levelTable[rgb[0]], levelTable[rgb[1]], levelTable[rgb[2]])
}

// SyncAll refreshes every slot.
func (c *Converter) SyncAll() {
	for i := range c.cache {
		c.Sync(i)
	}
}

// Cache returns the pixel cache read by row conversion.
func (c *Converter) Cache() *PixelCache {
	return &c.cache
}
