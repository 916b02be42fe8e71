package emu

import "testing"

func TestRegion_Timing(t *testing.T) {
	if got := GetTimingForRegion(RegionNTSC); got != NTSCTiming {
		t.Errorf("NTSC: expected %+v, got %+v", NTSCTiming, got)
	}
	if got := GetTimingForRegion(RegionPAL); got != PALTiming {
		t.Errorf("PAL: expected %+v, got %+v", PALTiming, got)
	}
}

func TestResolveRegion(t *testing.T) {
	rom := createTestROM(2)
	tests := []struct {
		name    string
		want    Region
		wantErr bool
	}{
		{"", RegionNTSC, false},
		{"auto", RegionNTSC, false},
		{"NTSC", RegionNTSC, false},
		{"pal", RegionPAL, false},
		{"secam", RegionNTSC, true},
	}
	for _, tc := range tests {
		got, err := ResolveRegion(tc.name, rom)
		if (err != nil) != tc.wantErr {
			t.Errorf("%q: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDetectNationalityFromROM(t *testing.T) {
	header := func(code byte) []byte {
		rom := make([]byte, 0x8000)
		copy(rom[0x7FF0:], "TMR SEGA")
		rom[0x7FFF] = code << 4
		return rom
	}

	tests := []struct {
		name string
		rom  []byte
		want Nationality
	}{
		{"japan", header(3), NationalityJapanese},
		{"export", header(4), NationalityExport},
		{"no signature", make([]byte, 0x8000), NationalityExport},
		{"too small", make([]byte, 0x4000), NationalityExport},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectNationalityFromROM(tc.rom); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
