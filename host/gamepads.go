package host

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/picomkiii/input"
)

// Gamepads holds controller state written by the Ebiten thread. The
// emulation side sees a snapshot that only changes when Task runs, so a
// whole frame observes one consistent state.
type Gamepads struct {
	mu      sync.Mutex
	current [input.Players]input.Buttons
	latched [input.Players]input.Buttons
}

// Set updates the live state of a player.
func (g *Gamepads) Set(player int, b input.Buttons) {
	if player < 0 || player >= input.Players {
		return
	}
	g.mu.Lock()
	g.current[player] = b
	g.mu.Unlock()
}

// Task latches the live state. It is the host bus service of the main
// loop.
func (g *Gamepads) Task() {
	g.mu.Lock()
	g.latched = g.current
	g.mu.Unlock()
}

// GamePad implements input.Source.
func (g *Gamepads) GamePad(player int) input.Buttons {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latched[player]
}

// Poll reads the keyboard and standard gamepads. The keyboard drives
// player 1 together with the first gamepad; the second gamepad drives
// player 2.
func (g *Gamepads) Poll() {
	var pads [input.Players]input.Buttons
	pads[0] = pollKeyboard()

	ids := ebiten.AppendGamepadIDs(nil)
	player := 0
	for _, id := range ids {
		if player >= input.Players {
			break
		}
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		pads[player] |= pollGamepad(id)
		player++
	}

	for i, b := range pads {
		g.Set(i, b)
	}
}

var keyMap = []struct {
	keys   []ebiten.Key
	button input.Buttons
}{
	{[]ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, input.ButtonUp},
	{[]ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, input.ButtonDown},
	{[]ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, input.ButtonLeft},
	{[]ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, input.ButtonRight},
	{[]ebiten.Key{ebiten.KeyJ, ebiten.KeyZ}, input.ButtonA},
	{[]ebiten.Key{ebiten.KeyK, ebiten.KeyX}, input.ButtonB},
	{[]ebiten.Key{ebiten.KeyBackspace}, input.ButtonSelect},
	{[]ebiten.Key{ebiten.KeyEnter}, input.ButtonStart},
}

func pollKeyboard() input.Buttons {
	var b input.Buttons
	for _, m := range keyMap {
		for _, k := range m.keys {
			if ebiten.IsKeyPressed(k) {
				b |= m.button
			}
		}
	}
	return b
}

var padMap = []struct {
	button ebiten.StandardGamepadButton
	mapped input.Buttons
}{
	{ebiten.StandardGamepadButtonLeftTop, input.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, input.ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, input.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, input.ButtonRight},
	{ebiten.StandardGamepadButtonRightBottom, input.ButtonA},
	{ebiten.StandardGamepadButtonRightRight, input.ButtonB},
	{ebiten.StandardGamepadButtonCenterLeft, input.ButtonSelect},
	{ebiten.StandardGamepadButtonCenterRight, input.ButtonStart},
}

func pollGamepad(id ebiten.GamepadID) input.Buttons {
	var b input.Buttons
	for _, m := range padMap {
		if ebiten.IsStandardGamepadButtonPressed(id, m.button) {
			b |= m.mapped
		}
	}

	// Left analog stick (with deadzone)
	const deadzone = 0.5
	x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	switch {
	case x < -deadzone:
		b |= input.ButtonLeft
	case x > deadzone:
		b |= input.ButtonRight
	}
	switch {
	case y < -deadzone:
		b |= input.ButtonUp
	case y > deadzone:
		b |= input.ButtonDown
	}
	return b
}
