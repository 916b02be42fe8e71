package audio

import (
	"log"

	"github.com/user-none/picomkiii/dvi"
)

const (
	DefaultVolume    = 50
	DefaultVolumeMax = 80

	// VolumeLimit is the highest volume percent. Above it scaled samples
	// would leave the int16 range.
	VolumeLimit = 100

	// BacklogFrames is how many frames of samples the bridge holds back
	// when the ring is full.
	BacklogFrames = 4
)

// Ring is the producer side of the stereo ring buffer.
type Ring interface {
	WritableSize() int
	WritePointer() []dvi.AudioSample
	AdvanceWritePointer(n int)
}

// Bridge moves each frame's audio into the ring with volume applied.
//
// Samples that do not fit are kept in a fixed backlog and written ahead of
// the next frame's samples, so order is preserved across calls. When the
// backlog itself is full the newest samples are dropped and counted.
type Bridge struct {
	ring      Ring
	volume    int
	volumeMax int

	backlog  []dvi.AudioSample
	pending  int
	dropped  uint64
	stalling bool
}

// NewBridge creates a bridge whose backlog can hold frameSamples samples
// for BacklogFrames frames. volumeMax is capped at VolumeLimit.
func NewBridge(ring Ring, frameSamples, volume, volumeMax int) *Bridge {
	b := &Bridge{
		ring:      ring,
		volumeMax: max(0, min(volumeMax, VolumeLimit)),
		backlog:   make([]dvi.AudioSample, frameSamples*BacklogFrames),
	}
	b.SetVolume(volume)
	return b
}

// SetVolume sets the volume percent, clamped to [0, volumeMax].
func (b *Bridge) SetVolume(v int) {
	b.volume = max(0, min(v, b.volumeMax))
}

func (b *Bridge) Volume() int {
	return b.volume
}

// Pending returns the number of samples waiting in the backlog.
func (b *Bridge) Pending() int {
	return b.pending
}

// Dropped returns the number of samples lost to backlog overflow.
func (b *Bridge) Dropped() uint64 {
	return b.dropped
}

// PushFrame writes one frame of audio. left and right must be the same
// length. It never blocks.
func (b *Bridge) PushFrame(left, right []int16) {
	b.flushBacklog()

	n := min(len(left), len(right))
	i := 0
	if b.pending == 0 {
		i = b.write(left[:n], right[:n])
	}
	if i == n {
		if b.pending == 0 {
			b.stalled(false)
		}
		return
	}

	keep := min(n-i, len(b.backlog)-b.pending)
	for j := 0; j < keep; j++ {
		b.backlog[b.pending+j] = b.scale(left[i+j], right[i+j])
	}
	b.pending += keep
	if lost := n - i - keep; lost > 0 {
		b.dropped += uint64(lost)
		b.stalled(true)
	}
}

// stalled logs once when the backlog starts overflowing and once when the
// ring accepts a whole frame again.
func (b *Bridge) stalled(on bool) {
	if on == b.stalling {
		return
	}
	b.stalling = on
	if on {
		log.Printf("warning: audio backlog full, dropping samples")
	} else {
		log.Printf("Audio recovered, %d samples dropped in total", b.dropped)
	}
}

// write copies scaled samples into the ring until it is full. It returns
// the number written.
func (b *Bridge) write(left, right []int16) int {
	i := 0
	for i < len(left) {
		size := min(b.ring.WritableSize(), len(left)-i)
		if size == 0 {
			break
		}
		p := b.ring.WritePointer()
		for j := 0; j < size; j++ {
			p[j] = b.scale(left[i+j], right[i+j])
		}
		b.ring.AdvanceWritePointer(size)
		i += size
	}
	return i
}

func (b *Bridge) flushBacklog() {
	done := 0
	for done < b.pending {
		size := min(b.ring.WritableSize(), b.pending-done)
		if size == 0 {
			break
		}
		copy(b.ring.WritePointer(), b.backlog[done:done+size])
		b.ring.AdvanceWritePointer(size)
		done += size
	}
	if done > 0 {
		copy(b.backlog, b.backlog[done:b.pending])
		b.pending -= done
	}
}

func (b *Bridge) scale(l, r int16) dvi.AudioSample {
	return dvi.AudioSample{
		L: int16(int(l) * b.volume / 100),
		R: int16(int(r) * b.volume / 100),
	}
}
