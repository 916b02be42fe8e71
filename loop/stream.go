package loop

import (
	"context"
	"errors"

	"github.com/user-none/picomkiii/dvi"
)

// Scaled conversion window: a 252 pixel source span from 34 stretched to
// 576 output pixels from 32.
const (
	ScaledSrcOffset = 34
	ScaledDstOffset = 32
	ScaledDstWidth  = 576
)

// Streamer is the scan-out side of the output engine.
type Streamer interface {
	RegisterIRQThisCore()
	UnregisterIRQThisCore()
	WaitForValidLine(ctx context.Context) error
	Start()
	Stop()
	Scale8_7() bool
	ConvertScanBuffer12bpp(ctx context.Context) error
	ConvertScanBuffer12bppScaled16_7(ctx context.Context, srcOffset, dstOffset, dstWidth int) error
}

// Exclusive is the request side the streaming loop yields to.
type Exclusive interface {
	Pending() bool
	ProcessOrWait() bool
}

// StreamingLoop keeps the engine converting lines and gives up the engine
// whenever an exclusive procedure is queued.
type StreamingLoop struct {
	Engine    Streamer
	Exclusive Exclusive
}

// Run streams until ctx is done or the engine is closed.
func (s *StreamingLoop) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		s.Engine.RegisterIRQThisCore()
		if err := s.Engine.WaitForValidLine(ctx); err != nil {
			s.Engine.UnregisterIRQThisCore()
			return streamErr(err)
		}

		s.Engine.Start()
		var err error
		for err == nil && !s.Exclusive.Pending() {
			if s.Engine.Scale8_7() {
				err = s.Engine.ConvertScanBuffer12bppScaled16_7(ctx, ScaledSrcOffset, ScaledDstOffset, ScaledDstWidth)
			} else {
				err = s.Engine.ConvertScanBuffer12bpp(ctx)
			}
		}

		s.Engine.UnregisterIRQThisCore()
		s.Engine.Stop()
		if err != nil {
			return streamErr(err)
		}

		s.Exclusive.ProcessOrWait()
	}
	return nil
}

// streamErr filters the errors that only signal shutdown.
func streamErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, dvi.ErrClosed) {
		return nil
	}
	return err
}
