package emu

// VDP timing constants (in CPU cycles within a scanline)
const (
	// VBlank interrupt fires slightly after the scanline starts.
	VBlankInterruptCycle = 4
	// Line counter decrements and the line interrupt may fire here.
	LineInterruptCycle = 8
	// CRAM and per-line registers are latched for rendering here, leaving
	// line interrupt handlers a few cycles to modify them.
	CRAMLatchCycle = 14
)

// Indexed pixel layout produced by the VDP.
const (
	// PixelIndexMask selects the CRAM slot of an indexed pixel.
	PixelIndexMask = 0x1F
	// PixelPriority marks an opaque background pixel drawn in front of
	// sprites.
	PixelPriority = 0x20
)

// hCounterTable maps a CPU cycle offset (0-227) to the exposed H-counter.
// One scanline is 684 master clocks (228 CPU cycles). The counter runs
// $00-$93 during active display, then jumps to $E9 and wraps through
// $00-$08 during H-blank.
var hCounterTable = func() [228]uint8 {
	var table [228]uint8
	for cycle := range table {
		master := cycle * 3
		var h int
		switch {
		case master < 256:
			h = master / 2
		case master < 512:
			h = min(0x80+(master-256)*20/256, 0x93)
		default:
			h = (0xE9 + (master-512)*32/172) & 0xFF
		}
		table[cycle] = uint8(h)
	}
	return table
}()

// GetHCounterForCycle returns the H-counter value for a cycle offset within
// a scanline.
func GetHCounterForCycle(cycle int) uint8 {
	if cycle < 0 {
		return 0
	}
	if cycle >= len(hCounterTable) {
		return hCounterTable[len(hCounterTable)-1]
	}
	return hCounterTable[cycle]
}

// VDP is the Mode 4 video processor. Each active line is rendered into an
// indexed row and handed to the attached Display.
type VDP struct {
	vram           [0x4000]uint8
	cram           [PaletteSize]uint8
	cramLatch      [PaletteSize]uint8
	register       [16]uint8
	addr           uint16
	addrLatch      uint8
	writeLatch     bool
	codeReg        uint8
	readBuffer     uint8
	status         uint8
	vCounter       uint16
	hCounter       uint8
	lineCounter    int16
	lineIntPending bool

	// Per-scanline latches
	hScrollLatch uint8
	reg2Latch    uint8
	reg7Latch    uint8
	// Latched once per frame
	vScrollLatch uint8

	totalScanlines int

	statusWasRead          bool
	interruptCheckRequired bool

	row          [ScreenWidth]uint8
	spritePixels [ScreenWidth]bool
	palette      Palette
	display      Display
}

func NewVDP() *VDP {
	return &VDP{
		totalScanlines: NTSCTiming.Scanlines,
		lineCounter:    255,
	}
}

// SetDisplay attaches the row and palette consumer and pushes every palette
// slot to it.
func (v *VDP) SetDisplay(d Display) {
	v.display = d
	for i := range v.cramLatch {
		v.syncPalette(i)
	}
}

// Palette returns the quantized palette built from the latched CRAM.
func (v *VDP) Palette() *Palette {
	return &v.palette
}

// Row returns the most recently rendered indexed line.
func (v *VDP) Row() []uint8 {
	return v.row[:]
}

func (v *VDP) syncPalette(index int) {
	v.palette.setCRAM(index, v.cramLatch[index])
	if v.display != nil {
		v.display.SyncPalette(index)
	}
}

// SetTotalScanlines configures the VDP for the region's frame length.
func (v *VDP) SetTotalScanlines(scanlines int) {
	v.totalScanlines = scanlines
}

// ReadVCounter returns the V-counter with the jump that folds 262 or 313
// lines into 8 bits.
func (v *VDP) ReadVCounter() uint8 {
	line := int(v.vCounter)
	var last int
	var jump int
	switch {
	case v.totalScanlines == PALTiming.Scanlines && v.ActiveHeight() == 224:
		last, jump = 258, 57
	case v.totalScanlines == PALTiming.Scanlines:
		last, jump = 242, 57
	case v.ActiveHeight() == 224:
		last, jump = 234, 6
	default:
		last, jump = 218, 6
	}
	if line <= last {
		return uint8(line)
	}
	return uint8(line - jump)
}

func (v *VDP) ReadHCounter() uint8 {
	return v.hCounter
}

func (v *VDP) SetHCounter(h uint8) {
	v.hCounter = h
}

// ActiveHeight returns 224 when both M2 (reg0 bit 1) and M1 (reg1 bit 4)
// are set and 192 otherwise.
func (v *VDP) ActiveHeight() int {
	if v.register[0]&0x02 != 0 && v.register[1]&0x10 != 0 {
		return 224
	}
	return 192
}

// ReadControl returns the status register and clears its flags.
func (v *VDP) ReadControl() uint8 {
	status := v.status
	v.status &^= 0xE0
	v.lineIntPending = false
	v.writeLatch = false
	v.statusWasRead = true
	return status
}

// StatusWasRead reports and clears whether status was read since the last
// call.
func (v *VDP) StatusWasRead() bool {
	was := v.statusWasRead
	v.statusWasRead = false
	return was
}

// InterruptCheckRequired reports and clears whether reg0 or reg1 was written
// since the last call.
func (v *VDP) InterruptCheckRequired() bool {
	req := v.interruptCheckRequired
	v.interruptCheckRequired = false
	return req
}

// WriteControl handles the two byte control port sequence.
func (v *VDP) WriteControl(value uint8) {
	if !v.writeLatch {
		v.addrLatch = value
		v.writeLatch = true
		return
	}
	v.writeLatch = false
	v.addr = uint16(v.addrLatch) | uint16(value&0x3F)<<8
	v.codeReg = value >> 6

	switch v.codeReg {
	case 0:
		v.readBuffer = v.vram[v.addr&0x3FFF]
		v.addr = (v.addr + 1) & 0x3FFF
	case 2:
		reg := value & 0x0F
		v.register[reg] = v.addrLatch
		if reg == 0 || reg == 1 {
			v.interruptCheckRequired = true
		}
	}
}

// ReadData returns the buffered VRAM byte and prefetches the next one.
func (v *VDP) ReadData() uint8 {
	v.writeLatch = false
	data := v.readBuffer
	v.readBuffer = v.vram[v.addr&0x3FFF]
	v.addr = (v.addr + 1) & 0x3FFF
	return data
}

// WriteData writes to CRAM or VRAM depending on the code register.
func (v *VDP) WriteData(value uint8) {
	v.writeLatch = false
	v.readBuffer = value
	if v.codeReg == 3 {
		v.cram[v.addr&0x1F] = value
	} else {
		v.vram[v.addr&0x3FFF] = value
	}
	v.addr = (v.addr + 1) & 0x3FFF
}

func (v *VDP) SetVBlank() {
	v.status |= 0x80
}

// InterruptPending reports whether the frame or line interrupt is asserted.
func (v *VDP) InterruptPending() bool {
	frame := v.status&0x80 != 0 && v.register[1]&0x20 != 0
	line := v.lineIntPending && v.register[0]&0x10 != 0
	return frame || line
}

// SetVCounter sets the scanline about to run.
func (v *VDP) SetVCounter(line uint16) {
	v.vCounter = line
}

// LatchVScrollForFrame locks register 9 for the whole frame.
func (v *VDP) LatchVScrollForFrame() {
	v.vScrollLatch = v.register[9]
}

// LatchCRAM latches CRAM for the current line. Every slot whose value
// changed is pushed to the display before the line is rendered.
func (v *VDP) LatchCRAM() {
	for i := range v.cram {
		if v.cramLatch[i] != v.cram[i] {
			v.cramLatch[i] = v.cram[i]
			v.syncPalette(i)
		}
	}
}

// LatchPerLineRegisters latches hScroll, the name table base and the
// backdrop colour for the current line.
func (v *VDP) LatchPerLineRegisters() {
	v.hScrollLatch = v.register[8]
	v.reg2Latch = v.register[2]
	v.reg7Latch = v.register[7]
}

// UpdateLineCounter runs the line interrupt counter for the current line.
// It decrements on lines 0 through the active height and reloads from
// register 10 for the rest of the frame.
func (v *VDP) UpdateLineCounter() {
	if int(v.vCounter) > v.ActiveHeight() {
		v.lineCounter = int16(v.register[10])
		return
	}
	v.lineCounter--
	if v.lineCounter < 0 {
		v.lineCounter = int16(v.register[10])
		v.lineIntPending = true
	}
}

func (v *VDP) backdrop() uint8 {
	return 16 + v.reg7Latch&0x0F
}

// RenderScanline renders the current line into the indexed row and hands
// it to the display.
func (v *VDP) RenderScanline() {
	line := int(v.vCounter)
	if line >= v.ActiveHeight() {
		return
	}

	if v.register[1]&0x40 == 0 {
		bd := v.backdrop()
		for x := range v.row {
			v.row[x] = bd
		}
	} else {
		v.renderBackground(line)
		v.renderSprites(line)
		if v.register[0]&0x20 != 0 {
			bd := v.backdrop()
			for x := 0; x < 8; x++ {
				v.row[x] = bd
			}
		}
	}

	if v.display != nil {
		v.display.RenderLine(line, v.row[:])
	}
}

// tilePixel decodes pixel px (0 leftmost) of a 4bpp planar pattern row.
func (v *VDP) tilePixel(addr uint16, px int) uint8 {
	shift := 7 - px
	var c uint8
	for plane := uint16(0); plane < 4; plane++ {
		c |= (v.vram[(addr+plane)&0x3FFF] >> shift & 1) << plane
	}
	return c
}

func (v *VDP) renderBackground(line int) {
	height := v.ActiveHeight()
	var nameTable uint16
	if height == 192 {
		nameTable = uint16(v.reg2Latch&0x0E) << 10
	} else {
		nameTable = uint16(v.reg2Latch&0x0C)<<10 | 0x0700
	}

	topRowLock := v.register[0]&0x40 != 0
	rightColLock := v.register[0]&0x80 != 0

	for x := 0; x < ScreenWidth; x++ {
		hScroll := v.hScrollLatch
		vScroll := v.vScrollLatch
		if topRowLock && line < 16 {
			hScroll = 0
		}
		if rightColLock && x >= 192 {
			vScroll = 0
		}

		y := line + int(vScroll)
		if height == 224 {
			y &= 0xFF
		} else if y >= 224 {
			y -= 224
		}
		sx := (x - int(hScroll)) & 0xFF

		entryAddr := nameTable + uint16((y/8)*32+sx/8)*2
		lo := v.vram[entryAddr&0x3FFF]
		hi := v.vram[(entryAddr+1)&0x3FFF]

		pattern := uint16(lo) | uint16(hi&0x01)<<8
		patternLine := y % 8
		if hi&0x04 != 0 {
			patternLine = 7 - patternLine
		}
		px := sx % 8
		if hi&0x02 != 0 {
			px = 7 - px
		}

		c := v.tilePixel(pattern*32+uint16(patternLine)*4, px)
		pixel := (hi&0x08)<<1 | c
		if hi&0x10 != 0 && c != 0 {
			pixel |= PixelPriority
		}
		v.row[x] = pixel
	}
}

type lineSprite struct {
	x       int
	pattern uint8
	line    int
}

func (v *VDP) renderSprites(line int) {
	sat := uint16(v.register[5]&0x7E) << 7
	height := 8
	if v.register[1]&0x02 != 0 {
		height = 16
	}
	zoomShift := int(v.register[1] & 0x01)
	patternBase := uint16(v.register[6]&0x04) << 11
	shift := 0
	if v.register[0]&0x08 != 0 {
		shift = 8
	}
	terminates := v.ActiveHeight() == 192

	var sprites [8]lineSprite
	n := 0
	for i := uint16(0); i < 64; i++ {
		y := int(v.vram[(sat+i)&0x3FFF])
		if terminates && y == 0xD0 {
			break
		}
		top := y + 1
		if line < top || line >= top+height<<zoomShift {
			continue
		}
		if n == len(sprites) {
			v.status |= 0x40
			break
		}
		attr := sat + 0x80 + i*2
		pattern := v.vram[(attr+1)&0x3FFF]
		if height == 16 {
			pattern &= 0xFE
		}
		sprites[n] = lineSprite{
			x:       int(v.vram[attr&0x3FFF]) - shift,
			pattern: pattern,
			line:    (line - top) >> zoomShift,
		}
		n++
	}

	for i := range v.spritePixels {
		v.spritePixels[i] = false
	}

	// Lower sprite numbers win, so draw back to front.
	for i := n - 1; i >= 0; i-- {
		spr := sprites[i]
		pattern := uint16(spr.pattern)
		row := spr.line
		if row >= 8 {
			pattern++
			row -= 8
		}
		addr := patternBase + pattern*32 + uint16(row)*4

		for px := 0; px < 8<<zoomShift; px++ {
			sx := spr.x + px
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			c := v.tilePixel(addr, px>>zoomShift)
			if c == 0 {
				continue
			}
			if v.spritePixels[sx] {
				v.status |= 0x20
			}
			v.spritePixels[sx] = true
			if v.row[sx]&PixelPriority != 0 {
				continue
			}
			v.row[sx] = 16 + c
		}
	}
}

func (v *VDP) GetRegister(n int) uint8 {
	if n < 0 || n >= len(v.register) {
		return 0
	}
	return v.register[n]
}

func (v *VDP) GetStatus() uint8 {
	return v.status
}

func (v *VDP) GetLineCounter() int16 {
	return v.lineCounter
}
