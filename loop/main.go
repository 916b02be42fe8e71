package loop

import (
	"context"
	"time"
)

// Input is sampled at the start of each frame.
type Input interface {
	Poll()
	FPSEnabled() bool
}

// Emulator runs the console one frame at a time.
type Emulator interface {
	RunFrame()
	AudioBuffers() (left, right []int16)
}

// Audio receives each frame's samples.
type Audio interface {
	PushFrame(left, right []int16)
}

// Clock reports frames scanned out by the output engine.
type Clock interface {
	FrameCounter() uint32
}

// Pacer blocks until the output engine has scanned out frame n.
type Pacer interface {
	WaitFrame(ctx context.Context, n uint32) error
}

// LED is the heartbeat indicator.
type LED interface {
	Set(on bool)
}

// Bus services host peripherals once per frame.
type Bus interface {
	Task()
}

// MainLoop drives the emulator. Everything it touches is owned by the
// loop; the output engine is only reached through line buffers, the audio
// ring and the clock.
type MainLoop struct {
	Input    Input
	Emulator Emulator
	Audio    Audio
	Clock    Clock
	LED      LED
	Bus      Bus
	FPS      *FPSMeter

	// When FrameRate is below DisplayRate, Run waits on Pacer so that
	// FrameRate frames run for every DisplayRate frames scanned out.
	Pacer       Pacer
	FrameRate   int
	DisplayRate int

	// Frames stops Run after that many frames when positive.
	Frames int

	frames int
}

// Step runs a single iteration.
func (m *MainLoop) Step() {
	m.Input.Poll()
	m.Emulator.RunFrame()
	m.Audio.PushFrame(m.Emulator.AudioBuffers())
	m.LED.Set(m.Clock.FrameCounter()/60&1 == 1)
	m.Bus.Task()
	if m.FPS != nil {
		m.FPS.Frame(time.Now(), m.Input.FPSEnabled())
	}
	m.frames++
}

// FrameCount returns the number of frames run.
func (m *MainLoop) FrameCount() int {
	return m.frames
}

// Run steps until ctx is done or the frame limit is reached.
func (m *MainLoop) Run(ctx context.Context) error {
	base := m.Clock.FrameCounter()
	start := m.frames
	for m.Frames <= 0 || m.frames < m.Frames {
		if ctx.Err() != nil {
			return nil
		}
		if err := m.pace(ctx, base, m.frames-start); err != nil {
			return streamErr(err)
		}
		m.Step()
	}
	return nil
}

// pace waits for the display frame that emulated frame k is due on.
func (m *MainLoop) pace(ctx context.Context, base uint32, k int) error {
	if m.Pacer == nil || m.FrameRate <= 0 || m.FrameRate >= m.DisplayRate {
		return nil
	}
	return m.Pacer.WaitFrame(ctx, base+uint32(k*m.DisplayRate/m.FrameRate))
}
