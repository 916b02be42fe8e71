package input

import (
	"log"
	"sync/atomic"

	"github.com/user-none/picomkiii/emu"
	"github.com/user-none/picomkiii/video"
)

// Players is the number of controller ports sampled.
const Players = 2

// Buttons is a raw device button bitmask.
type Buttons uint16

const (
	ButtonLeft Buttons = 1 << iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Source provides the current device buttons of a player.
type Source interface {
	GamePad(player int) Buttons
}

// Console is the input surface of the emulation core.
type Console interface {
	SetPad(player int, pad uint8)
	SetSystem(system uint8)
}

// ModeSwitcher steps the screen mode.
type ModeSwitcher interface {
	Advance(delta int) video.ScreenMode
}

// GamePadState tracks a player's mapped buttons across polls.
type GamePadState struct {
	Pad        uint8
	System     uint8
	prevPad    uint8
	prevSystem uint8
}

// Pushed returns the pad buttons that went down on the last poll.
func (s *GamePadState) Pushed() uint8 {
	return s.Pad &^ s.prevPad
}

// PushedSystem returns the system buttons that went down on the last poll.
func (s *GamePadState) PushedSystem() uint8 {
	return s.System &^ s.prevSystem
}

func (s *GamePadState) update(pad, system uint8) {
	s.prevPad, s.prevSystem = s.Pad, s.System
	s.Pad, s.System = pad, system
}

// Sampler reads the controllers once per frame. Holding START turns the
// pad into a menu: A toggles the FPS display, UP and DOWN cycle the screen
// mode and B saves the settings. The pad is not passed to the console
// while START is held.
type Sampler struct {
	src     Source
	console Console
	modes   ModeSwitcher
	onSave  func()

	state      [Players]GamePadState
	fpsEnabled atomic.Bool
}

func NewSampler(src Source, console Console, modes ModeSwitcher) *Sampler {
	return &Sampler{src: src, console: console, modes: modes}
}

// SetSaveHandler sets the function run for the save command. It is called
// from Poll.
func (s *Sampler) SetSaveHandler(fn func()) {
	s.onSave = fn
}

// FPSEnabled reports whether the frame rate display is on. It may be
// called from any goroutine.
func (s *Sampler) FPSEnabled() bool {
	return s.fpsEnabled.Load()
}

// State returns the tracked state of a player.
func (s *Sampler) State(player int) GamePadState {
	return s.state[player]
}

// Poll samples both players and forwards the result to the console.
func (s *Sampler) Poll() {
	var system uint8
	for i := range s.state {
		pad, sys := mapButtons(s.src.GamePad(i))
		st := &s.state[i]
		st.update(pad, sys)
		system |= sys

		if sys&emu.SystemStart == 0 {
			s.console.SetPad(i, pad)
			continue
		}

		s.console.SetPad(i, 0)
		pushed := st.Pushed()
		if pushed&emu.PadButton1 != 0 {
			on := !s.fpsEnabled.Load()
			s.fpsEnabled.Store(on)
			log.Printf("FPS: %s", onOff(on))
		}
		if pushed&emu.PadUp != 0 {
			s.modes.Advance(-1)
		} else if pushed&emu.PadDown != 0 {
			s.modes.Advance(1)
		}
		if pushed&emu.PadButton2 != 0 && s.onSave != nil {
			s.onSave()
		}
	}
	s.console.SetSystem(system)
}

func mapButtons(b Buttons) (pad, system uint8) {
	for _, m := range [...]struct {
		from Buttons
		to   uint8
	}{
		{ButtonLeft, emu.PadLeft},
		{ButtonRight, emu.PadRight},
		{ButtonUp, emu.PadUp},
		{ButtonDown, emu.PadDown},
		{ButtonA, emu.PadButton1},
		{ButtonB, emu.PadButton2},
	} {
		if b&m.from != 0 {
			pad |= m.to
		}
	}
	if b&ButtonSelect != 0 {
		system |= emu.SystemPause
	}
	if b&ButtonStart != 0 {
		system |= emu.SystemStart
	}
	return pad, system
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
