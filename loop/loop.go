// Package loop runs the emulation and streaming goroutines.
package loop

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner is a task that runs until its context is done.
type Runner interface {
	Run(ctx context.Context) error
}

// Run starts both loops together with the tasks that serve them, such as
// the engine's frame clock, and waits for all of them. Any of them
// returning ends the rest through the shared context.
func Run(ctx context.Context, main *MainLoop, stream *StreamingLoop, tasks ...Runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range append([]Runner{main, stream}, tasks...) {
		g.Go(func() error {
			defer cancel()
			return r.Run(ctx)
		})
	}
	return g.Wait()
}

// Fatal records an unrecoverable error. Only the first error is kept.
type Fatal struct {
	set atomic.Bool
	mu  sync.Mutex
	err error
}

func (f *Fatal) Set(err error) {
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
	f.set.Store(true)
	log.Printf("fatal: %v", err)
}

func (f *Fatal) IsSet() bool {
	return f.set.Load()
}

func (f *Fatal) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// FPSMeter counts frames and reports the rate once per second.
type FPSMeter struct {
	start  time.Time
	frames int
	fps    atomic.Int32
}

// Frame records a frame at now. The rate is logged when enabled is set.
func (m *FPSMeter) Frame(now time.Time, enabled bool) {
	if m.start.IsZero() {
		m.start = now
		return
	}
	m.frames++
	elapsed := now.Sub(m.start)
	if elapsed < time.Second {
		return
	}
	fps := int32(time.Duration(m.frames) * time.Second / elapsed)
	m.fps.Store(fps)
	m.start = now
	m.frames = 0
	if enabled {
		log.Printf("FPS: %d", fps)
	}
}

// FPS returns the last measured rate.
func (m *FPSMeter) FPS() int {
	return int(m.fps.Load())
}
