package emu

import "hash/crc32"

// MapperType identifies the cartridge banking scheme.
type MapperType int

const (
	MapperSega        MapperType = iota // bank registers at $FFFC-$FFFF
	MapperCodemasters                   // bank registers at $0000, $4000, $8000
)

func (m MapperType) String() string {
	switch m {
	case MapperSega:
		return "Sega"
	case MapperCodemasters:
		return "Codemasters"
	default:
		return "Unknown"
	}
}

const bankSize = 0x4000

// Memory is the Z80 address space: cartridge ROM behind a mapper, optional
// cartridge RAM and 8KB of mirrored system RAM.
type Memory struct {
	rom        []uint8
	ram        [0x2000]uint8
	cartRAM    [0x8000]uint8
	bankSlot   [3]uint8
	ramControl uint8 // $FFFC, Sega mapper only
	bankMask   uint8
	mapper     MapperType
}

func NewMemory(rom []byte) *Memory {
	m := &Memory{
		rom:    append([]uint8(nil), rom...),
		mapper: detectMapper(rom),
	}

	banks := max((len(rom)+bankSize-1)/bankSize, 1)
	pow2 := 1
	for pow2 < banks {
		pow2 <<= 1
	}
	m.bankMask = uint8(pow2 - 1)

	// Codemasters boards power up with bank 0 in slot 2.
	m.bankSlot = [3]uint8{0, 1, 2}
	if m.mapper == MapperCodemasters {
		m.bankSlot[2] = 0
	}
	return m
}

func detectMapper(rom []byte) MapperType {
	if info, ok := romDatabase[crc32.ChecksumIEEE(rom)]; ok {
		return info.Mapper
	}
	return MapperSega
}

// Mapper returns the banking scheme detected for the cartridge.
func (m *Memory) Mapper() MapperType {
	return m.mapper
}

// romByte reads offset within the bank mapped to slot, returning open bus
// ($FF) past the end of the image.
func (m *Memory) romByte(slot int, offset uint16) uint8 {
	addr := uint32(m.bankSlot[slot]&m.bankMask)*bankSize + uint32(offset)
	if addr < uint32(len(m.rom)) {
		return m.rom[addr]
	}
	return 0xFF
}

func (m *Memory) cartRAMAddr(addr uint16) uint32 {
	return uint32(m.ramControl>>2&0x01)*bankSize + uint32(addr-0x8000)
}

// Get reads a byte from the address space.
func (m *Memory) Get(addr uint16) uint8 {
	if addr >= 0xC000 {
		return m.ram[addr&0x1FFF]
	}
	slot := int(addr / bankSize)
	offset := addr % bankSize

	if m.mapper == MapperSega {
		switch {
		case addr < 0x0400:
			// The first 1KB is fixed so the interrupt vectors survive
			// bank switching.
			if int(addr) < len(m.rom) {
				return m.rom[addr]
			}
			return 0xFF
		case slot == 2 && m.ramControl&0x08 != 0:
			return m.cartRAM[m.cartRAMAddr(addr)]
		}
	}
	return m.romByte(slot, offset)
}

// Set writes a byte to the address space. Mapper registers are decoded
// here.
func (m *Memory) Set(addr uint16, val uint8) {
	if m.mapper == MapperCodemasters {
		switch addr {
		case 0x0000, 0x4000, 0x8000:
			m.bankSlot[addr/bankSize] = val
		}
		if addr >= 0xC000 {
			m.ram[addr&0x1FFF] = val
		}
		return
	}

	switch {
	case addr < 0x8000:
	case addr < 0xC000:
		if m.ramControl&0x08 != 0 {
			m.cartRAM[m.cartRAMAddr(addr)] = val
		}
	default:
		m.ram[addr&0x1FFF] = val
		switch addr {
		case 0xFFFC:
			m.ramControl = val
		case 0xFFFD, 0xFFFE, 0xFFFF:
			m.bankSlot[addr-0xFFFD] = val
		}
	}
}

// GetBankSlot returns the bank mapped to slot 0-2.
func (m *Memory) GetBankSlot(slot int) uint8 {
	return m.bankSlot[slot]
}

// GetRAMControl returns the $FFFC RAM control byte.
func (m *Memory) GetRAMControl() uint8 {
	return m.ramControl
}

// GetROMCRC32 returns the CRC32 of the loaded ROM.
func (m *Memory) GetROMCRC32() uint32 {
	return crc32.ChecksumIEEE(m.rom)
}
