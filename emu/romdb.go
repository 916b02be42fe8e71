package emu

// ROMInfo overrides the defaults for a cartridge the header cannot describe.
type ROMInfo struct {
	Mapper MapperType
	Region Region
}

// romDatabase maps ROM CRC32 to cartridges that need a non-default mapper
// or region. Anything absent runs as a Sega-mapper NTSC cartridge.
var romDatabase = map[uint32]ROMInfo{
	// Cosmic Spacehead
	0x29822980: {MapperCodemasters, RegionPAL},
	// Fantastic Dizzy
	0xb9664ae1: {MapperCodemasters, RegionPAL},
	// Micro Machines (PAL)
	0xa577ce46: {MapperCodemasters, RegionPAL},
	// Micro Machines (NTSC)
	0xa567a0c6: {MapperCodemasters, RegionNTSC},
}
