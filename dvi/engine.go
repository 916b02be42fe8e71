package dvi

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// LineBufferCount is the number of line buffers in flight between the
// producer and the serializer.
const LineBufferCount = 8

// AudioSink receives samples as the serializer consumes them. The slice is
// only valid for the duration of the call.
type AudioSink interface {
	WriteAudio(samples []AudioSample)
}

// Engine is a software DVI serializer. A producer fills line buffers from
// the pool and submits them; the streaming side converts them into a
// 640x480 frame paced by the frame clock. Audio is drained from a ring
// buffer at the configured rate on each frame.
type Engine struct {
	timing     Timing
	config     Config
	firstRow   int
	endRow     int
	frameRate  int
	rowsPerIRQ int

	free    chan *LineBuffer
	valid   chan *LineBuffer
	scratch *LineBuffer
	done    chan struct{}
	once    sync.Once

	frameCounter atomic.Uint32
	tickMu       sync.Mutex
	tick         chan struct{}
	scanLine     atomic.Bool
	scale8_7     atomic.Bool
	running      atomic.Bool
	irqEnabled   atomic.Bool
	irq          chan struct{}

	// Streaming side only.
	lineBudget int

	audio      *RingBuffer[AudioSample]
	audioFreq  int
	audioCTS   int
	audioN     int
	audioAcc   int
	silence    []AudioSample
	sinkMu     sync.Mutex
	sinks      []AudioSink
	underruns  atomic.Uint64
	sampleTaps atomic.Uint64

	frameMu sync.Mutex
	frame   *image.RGBA
}

// NewEngine creates an engine for the given video mode and board.
func NewEngine(timing Timing, config Config, blank BlankSettings) *Engine {
	first, end := timing.VisibleRows(blank)
	e := &Engine{
		timing:     timing,
		config:     config,
		firstRow:   first,
		endRow:     end,
		frameRate:  timing.FrameRate(),
		rowsPerIRQ: end - first,
		free:       make(chan *LineBuffer, LineBufferCount),
		valid:      make(chan *LineBuffer, LineBufferCount),
		scratch:    &LineBuffer{},
		done:       make(chan struct{}),
		irq:        make(chan struct{}, 1),
		tick:       make(chan struct{}),
		frame:      image.NewRGBA(image.Rect(0, 0, timing.HActive, timing.VActive)),
	}
	for i := 0; i < LineBufferCount; i++ {
		e.free <- &LineBuffer{}
	}
	for i := 3; i < len(e.frame.Pix); i += 4 {
		e.frame.Pix[i] = 0xFF
	}
	return e
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) Timing() Timing {
	return e.timing
}

// VisibleRows returns the first and end (exclusive) rows that are scanned
// out.
func (e *Engine) VisibleRows() (first, end int) {
	return e.firstRow, e.endRow
}

// GetLineBuffer takes a buffer from the pool, blocking until one is free.
// After Close it returns a throwaway buffer so producers can finish.
func (e *Engine) GetLineBuffer() *LineBuffer {
	select {
	case b := <-e.free:
		return b
	case <-e.done:
		return e.scratch
	}
}

// SetLineBuffer submits a filled buffer for row. Ownership passes to the
// engine.
func (e *Engine) SetLineBuffer(row int, b *LineBuffer) {
	if b == e.scratch {
		return
	}
	b.row = row
	// The queue holds every buffer in the pool so this never blocks.
	e.valid <- b
}

// AllocateAudioBuffer creates the audio ring with room for size samples.
func (e *Engine) AllocateAudioBuffer(size int) {
	e.audio = NewRingBuffer[AudioSample](size)
}

// AudioRingBuffer returns the ring allocated by AllocateAudioBuffer.
func (e *Engine) AudioRingBuffer() *RingBuffer[AudioSample] {
	return e.audio
}

// SetAudioFreq sets the sample rate along with the HDMI audio clock
// regeneration values sent to the sink.
func (e *Engine) SetAudioFreq(freq, cts, n int) {
	e.audioFreq = freq
	e.audioCTS = cts
	e.audioN = n
	e.silence = make([]AudioSample, freq/max(e.frameRate, 1)+1)
}

// AudioFreq returns the sample rate and clock regeneration values.
func (e *Engine) AudioFreq() (freq, cts, n int) {
	return e.audioFreq, e.audioCTS, e.audioN
}

// AddAudioSink registers a consumer of streamed audio.
func (e *Engine) AddAudioSink(s AudioSink) {
	e.sinkMu.Lock()
	e.sinks = append(e.sinks, s)
	e.sinkMu.Unlock()
}

// AudioUnderruns returns how many frames were padded with silence.
func (e *Engine) AudioUnderruns() uint64 {
	return e.underruns.Load()
}

// FrameCounter returns the number of frames scanned out while started.
func (e *Engine) FrameCounter() uint32 {
	return e.frameCounter.Load()
}

func (e *Engine) SetScanLine(on bool) {
	e.scanLine.Store(on)
}

func (e *Engine) ScanLine() bool {
	return e.scanLine.Load()
}

func (e *Engine) SetScale8_7(on bool) {
	e.scale8_7.Store(on)
}

func (e *Engine) Scale8_7() bool {
	return e.scale8_7.Load()
}

// RegisterIRQThisCore routes the line timing interrupt to the calling
// streaming loop.
func (e *Engine) RegisterIRQThisCore() {
	e.irqEnabled.Store(true)
}

// UnregisterIRQThisCore stops delivering the timing interrupt and drops
// any pending one.
func (e *Engine) UnregisterIRQThisCore() {
	e.irqEnabled.Store(false)
	select {
	case <-e.irq:
	default:
	}
}

// WaitForValidLine blocks until the frame clock reaches the start of
// scan-out.
func (e *Engine) WaitForValidLine(ctx context.Context) error {
	select {
	case <-e.irq:
		e.lineBudget = e.rowsPerIRQ
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins scan-out.
func (e *Engine) Start() {
	e.running.Store(true)
}

func (e *Engine) Stop() {
	e.running.Store(false)
	e.lineBudget = 0
}

func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run drives the frame clock until ctx is done, then closes the engine.
func (e *Engine) Run(ctx context.Context) error {
	defer e.Close()
	ticker := time.NewTicker(e.timing.FramePeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances the frame clock by one frame. The timing interrupt is
// raised whether or not scan-out is started; frames are only counted and
// audio only drained while it is.
func (e *Engine) Tick() {
	if e.irqEnabled.Load() {
		select {
		case e.irq <- struct{}{}:
		default:
		}
	}
	if !e.running.Load() {
		return
	}
	e.frameCounter.Add(1)
	e.tickMu.Lock()
	close(e.tick)
	e.tick = make(chan struct{})
	e.tickMu.Unlock()
	e.drainAudio()
}

// WaitFrame blocks until the frame counter reaches n.
func (e *Engine) WaitFrame(ctx context.Context, n uint32) error {
	for {
		e.tickMu.Lock()
		tick := e.tick
		e.tickMu.Unlock()
		if e.frameCounter.Load() >= n {
			return nil
		}
		select {
		case <-tick:
		case <-e.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close releases producers blocked on the pool. It is safe to call more
// than once.
func (e *Engine) Close() {
	e.once.Do(func() { close(e.done) })
}

// drainAudio hands one frame's worth of samples to the sinks, padding with
// silence when the producer fell behind.
func (e *Engine) drainAudio() {
	if e.audio == nil || e.audioFreq == 0 {
		return
	}
	e.audioAcc += e.audioFreq
	want := e.audioAcc / e.frameRate
	e.audioAcc -= want * e.frameRate

	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()

	for want > 0 {
		n := min(e.audio.ReadableSize(), want)
		if n == 0 {
			e.underruns.Add(1)
			e.emit(e.silence[:min(want, len(e.silence))])
			return
		}
		e.emit(e.audio.ReadPointer()[:n])
		e.audio.AdvanceReadPointer(n)
		want -= n
	}
}

func (e *Engine) emit(samples []AudioSample) {
	e.sampleTaps.Add(uint64(len(samples)))
	for _, s := range e.sinks {
		s.WriteAudio(samples)
	}
}

// SamplesStreamed returns the number of samples, including padding, sent
// to the sinks.
func (e *Engine) SamplesStreamed() uint64 {
	return e.sampleTaps.Load()
}

// CopyFrame copies the current output frame into dst, which must match
// the output resolution.
func (e *Engine) CopyFrame(dst *image.RGBA) {
	e.frameMu.Lock()
	copy(dst.Pix, e.frame.Pix)
	e.frameMu.Unlock()
}
