package adapter

import (
	"errors"
	"testing"

	"github.com/user-none/picomkiii/emu"
)

func TestSystemInfo(t *testing.T) {
	info := SystemInfo()
	if info.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", info.SampleRate)
	}
	if len(info.Extensions) != 1 || info.Extensions[0] != ".sms" {
		t.Errorf("expected [.sms], got %v", info.Extensions)
	}
	if info.Players != 2 {
		t.Errorf("expected 2 players, got %d", info.Players)
	}
}

func TestCreateEmulator(t *testing.T) {
	rom := make([]byte, 0x8000)

	tests := []struct {
		region string
		want   emu.Region
	}{
		{"auto", emu.RegionNTSC},
		{"ntsc", emu.RegionNTSC},
		{"PAL", emu.RegionPAL},
	}
	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			e, err := CreateEmulator(rom, tt.region)
			if err != nil {
				t.Fatalf("CreateEmulator: %v", err)
			}
			if e.GetRegion() != tt.want {
				t.Errorf("expected region %v, got %v", tt.want, e.GetRegion())
			}
		})
	}
}

func TestCreateEmulatorErrors(t *testing.T) {
	if _, err := CreateEmulator(make([]byte, 0x8000), "secam"); err == nil {
		t.Error("expected error for unknown region")
	}
	if _, err := CreateEmulator(nil, "auto"); !errors.Is(err, emu.ErrEmptyROM) {
		t.Errorf("expected ErrEmptyROM, got %v", err)
	}
}
