package dvi

import (
	"context"
	"errors"
)

// ErrClosed is returned by streaming calls once the engine is closed.
var ErrClosed = errors.New("dvi: engine closed")

// nextLine returns the next submitted buffer. It returns nil when the frame
// clock ticks before a buffer arrives so callers regain control at least
// once per frame.
func (e *Engine) nextLine(ctx context.Context) (*LineBuffer, error) {
	if e.lineBudget == 0 {
		select {
		case <-e.irq:
			e.lineBudget = e.rowsPerIRQ
		case <-e.done:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	select {
	case b := <-e.valid:
		e.lineBudget--
		return b, nil
	case <-e.irq:
		e.lineBudget = e.rowsPerIRQ
		return nil, nil
	case <-e.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ConvertScanBuffer12bpp converts the next submitted line with every pixel
// doubled horizontally.
func (e *Engine) ConvertScanBuffer12bpp(ctx context.Context) error {
	b, err := e.nextLine(ctx)
	if b == nil {
		return err
	}
	e.compose(b, func(dst []uint8, src []Pixel) {
		for x := 0; x < e.timing.HActive; x++ {
			putPixel(dst, x, src[min(x/2, LineWidth-1)])
		}
	})
	return nil
}

// ConvertScanBuffer12bppScaled16_7 converts the next submitted line,
// stretching the source from srcOffset onto dstWidth output pixels from
// dstOffset at a 16:7 ratio. Output outside that window is black.
func (e *Engine) ConvertScanBuffer12bppScaled16_7(ctx context.Context, srcOffset, dstOffset, dstWidth int) error {
	b, err := e.nextLine(ctx)
	if b == nil {
		return err
	}
	e.compose(b, func(dst []uint8, src []Pixel) {
		for x := 0; x < e.timing.HActive; x++ {
			if x < dstOffset || x >= dstOffset+dstWidth {
				putBlack(dst, x)
				continue
			}
			putPixel(dst, x, src[min(srcOffset+(x-dstOffset)*7/16, LineWidth-1)])
		}
	})
	return nil
}

// compose writes b into its pair of output lines and returns b to the pool.
func (e *Engine) compose(b *LineBuffer, conv func(dst []uint8, src []Pixel)) {
	defer func() { e.free <- b }()
	if b.row < e.firstRow || b.row >= e.endRow {
		return
	}

	width := e.timing.HActive * 4
	stride := e.frame.Stride
	top := 2 * b.row * stride
	bottom := top + stride

	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	upper := e.frame.Pix[top : top+width]
	lower := e.frame.Pix[bottom : bottom+width]
	conv(upper, b.pix[:])
	if e.scanLine.Load() {
		for x := 0; x < e.timing.HActive; x++ {
			putBlack(lower, x)
		}
	} else {
		copy(lower, upper)
	}
}

func putPixel(dst []uint8, x int, p Pixel) {
	r, g, b := p.RGB444()
	i := x * 4
	dst[i] = r * 17
	dst[i+1] = g * 17
	dst[i+2] = b * 17
	dst[i+3] = 0xFF
}

func putBlack(dst []uint8, x int) {
	i := x * 4
	dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0xFF
}
