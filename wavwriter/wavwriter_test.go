package wavwriter

import (
	"testing"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	"github.com/user-none/picomkiii/dvi"
)

func TestWriterRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/out.wav")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := New(f, 44100)
	samples := make([]dvi.AudioSample, 735)
	for i := range samples {
		samples[i] = dvi.AudioSample{L: int16(i), R: -int16(i)}
	}
	// Enough frames to cross a flush boundary.
	for frame := 0; frame < 10; frame++ {
		w.WriteAudio(samples)
	}
	if w.Samples() != 7350 {
		t.Errorf("Samples: expected 7350, got %d", w.Samples())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	f.Close()

	r, err := fs.Open("/out.wav")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.NumChans != 2 {
		t.Errorf("channels: expected 2, got %d", dec.NumChans)
	}
	if dec.SampleRate != 44100 {
		t.Errorf("sample rate: expected 44100, got %d", dec.SampleRate)
	}
	if len(buf.Data) != 7350*2 {
		t.Fatalf("data: expected %d values, got %d", 7350*2, len(buf.Data))
	}
	if buf.Data[2*734] != 734 || buf.Data[2*734+1] != -734 {
		t.Errorf("sample 734: expected (734,-734), got (%d,%d)", buf.Data[2*734], buf.Data[2*734+1])
	}
}
