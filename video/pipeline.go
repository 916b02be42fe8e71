package video

import "github.com/user-none/picomkiii/dvi"

// LineSink is the line buffer interface of the output engine.
type LineSink interface {
	GetLineBuffer() *dvi.LineBuffer
	SetLineBuffer(row int, b *dvi.LineBuffer)
}

// Geometry places source rows on the display.
type Geometry struct {
	RowOffset     int // display row of source row 0
	FirstRow      int // first display row scanned out
	EndRow        int // first display row past the visible window
	SourceHeight  int
	SourceWidth   int
	SourceXOffset int // first used pixel in a source row
	CropX         int // pixels dropped from each side
	Border        int // untouched pixels at the left of a line buffer
}

// DefaultGeometry centres a 256x192 picture in the 240 row frame with 8
// blanked output lines at the top and bottom.
func DefaultGeometry() Geometry {
	return Geometry{
		RowOffset:    25,
		FirstRow:     4,
		EndRow:       236,
		SourceHeight: 192,
		SourceWidth:  256,
		Border:       32,
	}
}

// Pipeline turns indexed source rows into line buffers. Every visible
// display row gets exactly one buffer per frame: source rows fill the
// middle and the rows above and below are cleared around the first and
// last source row.
type Pipeline struct {
	sink  LineSink
	cache *PixelCache
	geo   Geometry
}

func NewPipeline(sink LineSink, cache *PixelCache, geo Geometry) *Pipeline {
	return &Pipeline{sink: sink, cache: cache, geo: geo}
}

func (p *Pipeline) Geometry() Geometry {
	return p.geo
}

// RenderRow converts source row line. Lines past SourceHeight, such as the
// extra rows of the 224 line mode, and rows that land outside the visible
// window are ignored.
func (p *Pipeline) RenderRow(line int, src []uint8) {
	g := p.geo
	if line < 0 || line >= g.SourceHeight {
		return
	}
	row := line + g.RowOffset
	if row < g.FirstRow || row >= g.EndRow {
		return
	}

	if row == g.RowOffset {
		for r := g.FirstRow; r < row; r++ {
			p.blank(r)
		}
	}

	b := p.sink.GetLineBuffer()
	dst := b.Data()[g.Border:]
	for i := g.CropX; i < g.SourceWidth-g.CropX; i++ {
		dst[i-g.CropX] = p.cache[src[i+g.SourceXOffset]&(PaletteSize-1)]
	}
	clear(dst[g.SourceWidth-2*g.CropX : g.SourceWidth])
	p.sink.SetLineBuffer(row, b)

	if row == g.SourceHeight+g.RowOffset-1 {
		for r := row + 1; r < g.EndRow; r++ {
			p.blank(r)
		}
	}
}

func (p *Pipeline) blank(row int) {
	b := p.sink.GetLineBuffer()
	clear(b.Data()[p.geo.Border : p.geo.Border+p.geo.SourceWidth])
	p.sink.SetLineBuffer(row, b)
}

// Renderer feeds the emulation core's palette changes and rows through a
// Converter and a Pipeline.
type Renderer struct {
	conv *Converter
	pipe *Pipeline
}

func NewRenderer(conv *Converter, pipe *Pipeline) *Renderer {
	return &Renderer{conv: conv, pipe: pipe}
}

func (r *Renderer) SyncPalette(index int) {
	r.conv.Sync(index)
}

func (r *Renderer) RenderLine(line int, row []uint8) {
	r.pipe.RenderRow(line, row)
}
