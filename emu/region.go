package emu

import (
	"fmt"
	"hash/crc32"
	"strings"

	emucore "github.com/user-none/eblitui/api"
)

// Region is the console video standard.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds the clocking of a region.
type RegionTiming struct {
	CPUClockHz int
	Scanlines  int
	FPS        int
}

var NTSCTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

var PALTiming = RegionTiming{
	CPUClockHz: 3546893,
	Scanlines:  313,
	FPS:        50,
}

func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// DetectRegionFromROM looks the ROM up in the cartridge database. It
// returns NTSC and false for unknown ROMs.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	if info, ok := romDatabase[crc32.ChecksumIEEE(rom)]; ok {
		return info.Region, true
	}
	return RegionNTSC, false
}

// ResolveRegion turns a configured region name into a Region. "auto" (or
// empty) consults the cartridge database.
func ResolveRegion(name string, rom []byte) (Region, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		r, _ := DetectRegionFromROM(rom)
		return r, nil
	case "ntsc":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	}
	return RegionNTSC, fmt.Errorf("unknown region %q", name)
}

// Nationality is the Japanese/export split reported through the TH lines.
// It is independent of Region.
type Nationality int

const (
	NationalityExport Nationality = iota
	NationalityJapanese
)

func (n Nationality) String() string {
	switch n {
	case NationalityExport:
		return "Export"
	case NationalityJapanese:
		return "Japanese"
	default:
		return "Unknown"
	}
}

// DetectNationalityFromROM reads the region code from the "TMR SEGA"
// header at $7FF0. ROMs without a header are treated as export.
func DetectNationalityFromROM(rom []byte) Nationality {
	if len(rom) < 0x8000 || string(rom[0x7FF0:0x7FF8]) != "TMR SEGA" {
		return NationalityExport
	}
	if rom[0x7FFF]>>4 == 3 {
		return NationalityJapanese
	}
	return NationalityExport
}
