package dvi

import (
	"fmt"
	"slices"
	"time"
)

// Config is the wiring of a board's DVI connector.
type Config struct {
	Name     string
	PinTMDS  [3]int // D0, D1, D2 positive pins
	PinClock int
	Invert   bool
}

// DefaultBoard is used when no board is configured.
const DefaultBoard = "pimoroni-demo-dv-sock"

var boards = map[string]Config{
	"picodvi": {
		Name:     "picodvi",
		PinTMDS:  [3]int{10, 12, 14},
		PinClock: 8,
		Invert:   true,
	},
	"picodvi-sock": {
		Name:     "picodvi-sock",
		PinTMDS:  [3]int{12, 18, 16},
		PinClock: 14,
		Invert:   false,
	},
	"pimoroni-demo-dv-sock": {
		Name:     "pimoroni-demo-dv-sock",
		PinTMDS:  [3]int{8, 10, 12},
		PinClock: 6,
		Invert:   true,
	},
	"adafruit-feather-dvi": {
		Name:     "adafruit-feather-dvi",
		PinTMDS:  [3]int{18, 20, 22},
		PinClock: 16,
		Invert:   true,
	},
}

// BoardConfig returns the named board preset. An empty name selects
// DefaultBoard.
func BoardConfig(name string) (Config, error) {
	if name == "" {
		name = DefaultBoard
	}
	cfg, ok := boards[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown board %q (known: %v)", name, Boards())
	}
	return cfg, nil
}

// Boards lists the preset names in sorted order.
func Boards() []string {
	names := make([]string, 0, len(boards))
	for name := range boards {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Timing describes the output video mode.
type Timing struct {
	HActive       int
	VActive       int
	HTotal        int
	VTotal        int
	PixelClockKHz int
}

var Timing640x480p60 = Timing{
	HActive:       640,
	VActive:       480,
	HTotal:        800,
	VTotal:        525,
	PixelClockKHz: 25200,
}

// Rows returns the number of line buffer rows per frame. Every row is
// shown on two output lines.
func (t Timing) Rows() int {
	return t.VActive / 2
}

// FramePeriod returns the duration of one frame.
func (t Timing) FramePeriod() time.Duration {
	return time.Duration(int64(time.Second) * int64(t.HTotal*t.VTotal) / (int64(t.PixelClockKHz) * 1000))
}

// FrameRate returns the frame rate rounded to whole frames per second.
func (t Timing) FrameRate() int {
	total := t.HTotal * t.VTotal
	return (t.PixelClockKHz*1000 + total/2) / total
}

// BlankSettings is the number of output lines left black at the top and
// bottom of the frame.
type BlankSettings struct {
	Top    int
	Bottom int
}

// VisibleRows returns the first row and the end row (exclusive) of line
// buffer rows that are scanned out.
func (t Timing) VisibleRows(b BlankSettings) (first, end int) {
	return b.Top / 2, t.Rows() - b.Bottom/2
}
