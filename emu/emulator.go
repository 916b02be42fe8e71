package emu

import (
	"errors"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/go-chip-z80"
)

const (
	ScreenWidth     = 256
	MaxScreenHeight = 224
	SampleRate      = 44100
)

// Pad bits. The d-pad follows the emucore layout; the two action buttons
// sit above it.
const (
	PadUp      = 1 << emucore.ButtonUp
	PadDown    = 1 << emucore.ButtonDown
	PadLeft    = 1 << emucore.ButtonLeft
	PadRight   = 1 << emucore.ButtonRight
	PadButton1 = 1 << 4
	PadButton2 = 1 << 5
)

// System button bits.
const (
	SystemPause = 1 << 0
	// SystemStart has no Master System counterpart; the core ignores it.
	SystemStart = 1 << 1
)

var ErrEmptyROM = errors.New("rom image is empty")

// Emulator wires the Z80, VDP, PSG and cartridge into a frame stepper.
type Emulator struct {
	cpu                 *z80.CPU
	mem                 *Memory
	vdp                 *VDP
	psg                 *sn76489.SN76489
	io                  *SMSIO
	cyclesPerScanlineFP int // 16 fractional bits

	region    Region
	timing    RegionTiming
	scanlines int

	prevSystem uint8

	frameSamples []float32
	left         []int16
	right        []int16
}

// NewEmulator builds a powered-on console with rom inserted.
func NewEmulator(rom []byte, region Region) (*Emulator, error) {
	if len(rom) == 0 {
		return nil, ErrEmptyROM
	}

	mem := NewMemory(rom)
	vdp := NewVDP()

	timing := GetTimingForRegion(region)
	vdp.SetTotalScanlines(timing.Scanlines)

	samplesPerFrame := SampleRate / timing.FPS
	psg := sn76489.New(timing.CPUClockHz, SampleRate, samplesPerFrame*2, sn76489.Sega)

	io := NewSMSIO(vdp, psg, DetectNationalityFromROM(rom))
	cpu := z80.New(NewSMSBus(mem, io))

	return &Emulator{
		cpu:                 cpu,
		mem:                 mem,
		vdp:                 vdp,
		psg:                 psg,
		io:                  io,
		cyclesPerScanlineFP: timing.CPUClockHz * 65536 / timing.FPS / timing.Scanlines,
		region:              region,
		timing:              timing,
		scanlines:           timing.Scanlines,
		frameSamples:        make([]float32, 0, samplesPerFrame*2),
		left:                make([]int16, 0, samplesPerFrame*2),
		right:               make([]int16, 0, samplesPerFrame*2),
	}, nil
}

// SetDisplay attaches the consumer of rendered lines and palette changes.
func (e *Emulator) SetDisplay(d Display) {
	e.vdp.SetDisplay(d)
}

// Palette returns the palette the display reads from.
func (e *Emulator) Palette() *Palette {
	return e.vdp.Palette()
}

func (e *Emulator) checkAndSetInterrupt() {
	e.cpu.INT(e.vdp.InterruptPending(), 0xFF)
}

// RunFrame executes one frame. Each active line is delivered to the
// display as it completes and the frame's audio replaces the previous
// frame's in AudioBuffers.
func (e *Emulator) RunFrame() {
	activeHeight := e.vdp.ActiveHeight()
	e.frameSamples = e.frameSamples[:0]

	targetFP, prevTarget := 0, 0
	for i := 0; i < e.scanlines; i++ {
		targetFP += e.cyclesPerScanlineFP
		budget := targetFP>>16 - prevTarget
		prevTarget = targetFP >> 16

		e.vdp.SetVCounter(uint16(i))
		if i == 0 {
			e.vdp.LatchVScrollForFrame()
		}

		// The frame interrupt fires one line after the last active line.
		isVBlankLine := i == activeHeight+1
		vblankDone, lineIntDone, latched := false, false, false

		consumed := 0
		for consumed < budget {
			if !vblankDone && isVBlankLine && consumed >= VBlankInterruptCycle {
				e.vdp.SetVBlank()
				e.checkAndSetInterrupt()
				vblankDone = true
			}
			if !lineIntDone && consumed >= LineInterruptCycle {
				e.vdp.UpdateLineCounter()
				e.checkAndSetInterrupt()
				lineIntDone = true
			}
			if !latched && consumed >= CRAMLatchCycle {
				e.vdp.LatchCRAM()
				e.vdp.LatchPerLineRegisters()
				latched = true
			}

			e.vdp.SetHCounter(GetHCounterForCycle(consumed))
			consumed += e.cpu.StepCycles(budget - consumed)

			// The interrupt line is level triggered: re-evaluate after
			// enable bits change or status is read.
			if e.vdp.InterruptCheckRequired() || e.vdp.StatusWasRead() {
				e.checkAndSetInterrupt()
			}
		}

		if !vblankDone && isVBlankLine {
			e.vdp.SetVBlank()
			e.checkAndSetInterrupt()
		}
		if !lineIntDone {
			e.vdp.UpdateLineCounter()
			e.checkAndSetInterrupt()
		}
		if !latched {
			e.vdp.LatchCRAM()
			e.vdp.LatchPerLineRegisters()
		}

		if i < activeHeight {
			e.vdp.RenderScanline()
		}

		e.psg.GenerateSamples(budget)
		buf, count := e.psg.GetBuffer()
		if count > 0 {
			e.frameSamples = append(e.frameSamples, buf[:count]...)
		}
	}

	e.left = e.left[:0]
	e.right = e.right[:0]
	for _, s := range e.frameSamples {
		// Mono is duplicated to both speakers; halve it so the pair is
		// not perceived twice as loud.
		v := int16(max(-1, min(1, s)) * 32767 * 0.5)
		e.left = append(e.left, v)
		e.right = append(e.right, v)
	}
}

// AudioBuffers returns the last frame's samples for each channel. The
// slices are reused by the next RunFrame.
func (e *Emulator) AudioBuffers() (left, right []int16) {
	return e.left, e.right
}

// SetPad sets a controller from a Pad* bitmask.
func (e *Emulator) SetPad(player int, pad uint8) {
	e.io.Input.SetPad(player, pad)
}

// SetSystem sets the console buttons. Pressing pause raises an NMI.
func (e *Emulator) SetSystem(system uint8) {
	if system&SystemPause != 0 && e.prevSystem&SystemPause == 0 {
		e.cpu.NMI()
	}
	e.prevSystem = system
}

// ActiveHeight returns the current display height (192 or 224).
func (e *Emulator) ActiveHeight() int {
	return e.vdp.ActiveHeight()
}

func (e *Emulator) GetRegion() Region {
	return e.region
}

func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// Mapper returns the cartridge banking scheme in use.
func (e *Emulator) Mapper() MapperType {
	return e.mem.Mapper()
}
