package emu

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

var spinCode = []byte{
	0xF3,             // DI
	0x31, 0xF0, 0xDF, // LD SP,$DFF0
	0x18, 0xFE, // JR $
}

// spinROM disables interrupts and loops forever.
func spinROM() []byte {
	return createProgramROM(spinCode, nil)
}

func TestEmulator_EmptyROM(t *testing.T) {
	_, err := NewEmulator(nil, RegionNTSC)
	if !errors.Is(err, ErrEmptyROM) {
		t.Errorf("expected ErrEmptyROM, got %v", err)
	}
}

func TestEmulator_Timing(t *testing.T) {
	tests := []struct {
		region    Region
		fps       int
		scanlines int
	}{
		{RegionNTSC, 60, 262},
		{RegionPAL, 50, 313},
	}
	for _, tc := range tests {
		e, err := NewEmulator(spinROM(), tc.region)
		if err != nil {
			t.Fatalf("NewEmulator: %v", err)
		}
		timing := e.GetTiming()
		if timing.FPS != tc.fps || timing.Scanlines != tc.scanlines {
			t.Errorf("%v: expected %d fps/%d lines, got %d/%d",
				tc.region, tc.fps, tc.scanlines, timing.FPS, timing.Scanlines)
		}
		if e.GetRegion() != tc.region {
			t.Errorf("region: expected %v, got %v", tc.region, e.GetRegion())
		}
	}
}

func TestEmulator_RunFrameDeliversActiveLines(t *testing.T) {
	e, err := NewEmulator(spinROM(), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}
	d := newRecordingDisplay()
	e.SetDisplay(d)
	if len(d.syncs) != PaletteSize {
		t.Errorf("attach: expected %d palette syncs, got %d", PaletteSize, len(d.syncs))
	}

	e.RunFrame()

	if len(d.order) != 192 {
		t.Fatalf("expected 192 lines, got %d", len(d.order))
	}
	for i, line := range d.order {
		if line != i {
			t.Fatalf("line %d delivered out of order as %d", i, line)
		}
	}
}

func TestEmulator_AudioSampleCount(t *testing.T) {
	e, err := NewEmulator(spinROM(), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}

	for frame := 0; frame < 3; frame++ {
		e.RunFrame()
		left, right := e.AudioBuffers()
		if len(left) != len(right) {
			t.Fatalf("frame %d: channel lengths differ: %d vs %d", frame, len(left), len(right))
		}
		want := SampleRate / 60
		if diff := len(left) - want; diff < -2 || diff > 2 {
			t.Errorf("frame %d: expected about %d samples, got %d", frame, want, len(left))
		}
	}
}

func TestEmulator_PaletteSyncBeforeLine(t *testing.T) {
	// Write $3F to CRAM slot 0 then spin.
	code := []byte{
		0xF3,             // DI
		0x31, 0xF0, 0xDF, // LD SP,$DFF0
		0x3E, 0x00, // LD A,0
		0xD3, 0xBF, // OUT ($BF),A
		0x3E, 0xC0, // LD A,$C0
		0xD3, 0xBF, // OUT ($BF),A
		0x3E, 0x3F, // LD A,$3F
		0xD3, 0xBE, // OUT ($BE),A
		0x18, 0xFE, // JR $
	}
	e, err := NewEmulator(createProgramROM(code, nil), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}

	d := &eventDisplay{palette: e.Palette()}
	e.SetDisplay(d)
	d.events = nil
	e.RunFrame()

	idx := slices.Index(d.events, "sync 0 [192 192 192]")
	if idx < 0 {
		t.Fatalf("slot 0 was never synced: %v", d.events[:min(5, len(d.events))])
	}
	if idx+1 >= len(d.events) || !strings.HasPrefix(d.events[idx+1], "line ") {
		t.Errorf("expected a line right after the sync, got %v", d.events[idx:min(idx+2, len(d.events))])
	}
}

// eventDisplay logs syncs with the colour visible at sync time.
type eventDisplay struct {
	events  []string
	palette *Palette
}

func (d *eventDisplay) SyncPalette(index int) {
	d.events = append(d.events, fmt.Sprintf("sync %d %v", index, d.palette.Color(index)))
}

func (d *eventDisplay) RenderLine(line int, row []uint8) {
	d.events = append(d.events, fmt.Sprintf("line %d", line))
}

func TestEmulator_SetPad(t *testing.T) {
	e, err := NewEmulator(spinROM(), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}

	e.SetPad(0, PadUp|PadButton1)
	if got := e.io.In(0xDC); got != 0xEE {
		t.Errorf("P1 port: expected 0xEE, got 0x%02X", got)
	}

	e.SetPad(1, PadDown|PadButton2)
	if got := e.io.In(0xDC); got != 0x6E {
		t.Errorf("P1/P2 port: expected 0x6E, got 0x%02X", got)
	}
	if got := e.io.In(0xDD) & 0x0F; got != 0x07 {
		t.Errorf("P2 port low nibble: expected 0x07, got 0x%02X", got)
	}

	e.SetPad(0, 0)
	e.SetPad(1, 0)
	if got := e.io.In(0xDC); got != 0xFF {
		t.Errorf("released: expected 0xFF, got 0x%02X", got)
	}
}

func TestEmulator_PauseRaisesNMIOnEdge(t *testing.T) {
	// NMI handler stores $42 at $C000 and returns.
	nmi := []byte{0x3E, 0x42, 0x32, 0x00, 0xC0, 0xED, 0x45}
	e, err := NewEmulator(createProgramROM(spinCode, nmi), RegionNTSC)
	if err != nil {
		t.Fatalf("NewEmulator: %v", err)
	}

	e.SetSystem(SystemPause)
	e.RunFrame()
	if got := e.mem.Get(0xC000); got != 0x42 {
		t.Fatalf("after press: expected 0x42, got 0x%02X", got)
	}

	e.mem.Set(0xC000, 0)
	e.SetSystem(SystemPause)
	e.RunFrame()
	if got := e.mem.Get(0xC000); got != 0 {
		t.Errorf("held pause should not retrigger, got 0x%02X", got)
	}

	e.SetSystem(SystemStart)
	e.SetSystem(SystemPause)
	e.RunFrame()
	if got := e.mem.Get(0xC000); got != 0x42 {
		t.Errorf("second press: expected 0x42, got 0x%02X", got)
	}
}
