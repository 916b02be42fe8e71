package host

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/user-none/picomkiii/dvi"
)

// maxQueued bounds the bytes waiting for the device, about a quarter
// second at 44.1 kHz stereo.
const maxQueued = 44100 / 4 * 4

// AudioPlayer plays samples as the output engine streams them. The engine
// pushes through WriteAudio and oto pulls through Read.
type AudioPlayer struct {
	ctx    *oto.Context
	player *oto.Player

	mu    sync.Mutex
	queue []byte
}

// NewAudioPlayer opens the audio device at sampleRate.
func NewAudioPlayer(sampleRate int) (*AudioPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	a := &AudioPlayer{
		ctx:   ctx,
		queue: make([]byte, 0, maxQueued),
	}
	a.player = ctx.NewPlayer(a)
	a.player.Play()
	return a, nil
}

// WriteAudio implements dvi.AudioSink. When the device falls behind the
// oldest queued audio is discarded.
func (a *AudioPlayer) WriteAudio(samples []dvi.AudioSample) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range samples {
		a.queue = append(a.queue, byte(s.L), byte(s.L>>8), byte(s.R), byte(s.R>>8))
	}
	if over := len(a.queue) - maxQueued; over > 0 {
		over = (over + 3) &^ 3
		a.queue = a.queue[:copy(a.queue, a.queue[over:])]
	}
}

// Read implements io.Reader for oto. Missing audio reads as silence.
func (a *AudioPlayer) Read(p []byte) (int, error) {
	a.mu.Lock()
	n := copy(p, a.queue)
	a.queue = a.queue[:copy(a.queue, a.queue[n:])]
	a.mu.Unlock()
	clear(p[n:])
	return len(p), nil
}

func (a *AudioPlayer) Close() error {
	if a.player != nil {
		return a.player.Close()
	}
	return nil
}
