package video

import "log"

// ScreenMode selects the scan-line effect and horizontal scaling.
type ScreenMode int

const (
	ScanLine8_7 ScreenMode = iota
	NoScanLine8_7
	ScanLine1_1
	NoScanLine1_1

	screenModeCount = 4
)

func (m ScreenMode) ScanLine() bool {
	return m == ScanLine8_7 || m == ScanLine1_1
}

func (m ScreenMode) Scale8_7() bool {
	return m == ScanLine8_7 || m == NoScanLine8_7
}

func (m ScreenMode) Valid() bool {
	return m >= 0 && m < screenModeCount
}

func (m ScreenMode) String() string {
	switch m {
	case ScanLine8_7:
		return "scanline 8:7"
	case NoScanLine8_7:
		return "no scanline 8:7"
	case ScanLine1_1:
		return "scanline 1:1"
	case NoScanLine1_1:
		return "no scanline 1:1"
	default:
		return "unknown"
	}
}

// LiveConfig is the output engine state a screen mode drives.
type LiveConfig interface {
	SetScanLine(on bool)
	SetScale8_7(on bool)
}

// ModeController cycles the screen mode and pushes it to the engine.
type ModeController struct {
	live LiveConfig
	mode ScreenMode
}

// NewModeController applies initial, falling back to ScanLine8_7 when it
// is out of range.
func NewModeController(live LiveConfig, initial ScreenMode) *ModeController {
	if !initial.Valid() {
		initial = ScanLine8_7
	}
	c := &ModeController{live: live, mode: initial}
	c.apply()
	return c
}

func (c *ModeController) Mode() ScreenMode {
	return c.mode
}

// Advance steps the mode by delta, wrapping in both directions.
func (c *ModeController) Advance(delta int) ScreenMode {
	m := (int(c.mode) + delta) % screenModeCount
	if m < 0 {
		m += screenModeCount
	}
	c.mode = ScreenMode(m)
	c.apply()
	log.Printf("Screen mode: %v", c.mode)
	return c.mode
}

func (c *ModeController) apply() {
	c.live.SetScanLine(c.mode.ScanLine())
	c.live.SetScale8_7(c.mode.Scale8_7())
}
