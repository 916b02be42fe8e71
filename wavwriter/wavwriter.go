// Package wavwriter records the streamed audio to a 16-bit stereo WAV file.
package wavwriter

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/user-none/picomkiii/dvi"
)

// flushSamples is how many stereo samples are buffered between encoder
// writes.
const flushSamples = 4096

// Writer is a dvi.AudioSink that encodes everything it receives.
type Writer struct {
	mu      sync.Mutex
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	samples int
	err     error
}

// New creates a Writer encoding to w. The WAV header is completed by Close.
func New(w io.WriteSeeker, sampleRate int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, 16, 2, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
			Data:           make([]int, 0, flushSamples*2),
			SourceBitDepth: 16,
		},
	}
}

// WriteAudio implements dvi.AudioSink.
func (w *Writer) WriteAudio(samples []dvi.AudioSample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range samples {
		w.buf.Data = append(w.buf.Data, int(s.L), int(s.R))
	}
	w.samples += len(samples)
	if len(w.buf.Data) >= flushSamples*2 {
		w.flush()
	}
}

// Samples returns the number of stereo samples received.
func (w *Writer) Samples() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.samples
}

func (w *Writer) flush() {
	if len(w.buf.Data) == 0 || w.err != nil {
		w.buf.Data = w.buf.Data[:0]
		return
	}
	if err := w.enc.Write(w.buf); err != nil {
		w.err = fmt.Errorf("failed to write wav data: %w", err)
		log.Printf("warning: %v", w.err)
	}
	w.buf.Data = w.buf.Data[:0]
}

// Close flushes buffered samples and finalizes the header. It returns the
// first error seen while writing.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
	if err := w.enc.Close(); err != nil && w.err == nil {
		w.err = fmt.Errorf("failed to finalize wav: %w", err)
	}
	return w.err
}
