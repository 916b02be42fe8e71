package emu

import "github.com/user-none/go-chip-sn76489"

// Input holds the two controller ports as read by the CPU (active low).
type Input struct {
	Port1 uint8 // $DC: P1 all, P2 up/down
	Port2 uint8 // $DD: P2 left/right/buttons, TH lines
}

// SMSIO decodes the Z80 I/O space.
type SMSIO struct {
	vdp         *VDP
	psg         *sn76489.SN76489
	nationality Nationality
	ioControl   uint8 // $3F
	Input       *Input
}

func NewSMSIO(vdp *VDP, psg *sn76489.SN76489, nationality Nationality) *SMSIO {
	return &SMSIO{
		vdp:         vdp,
		psg:         psg,
		nationality: nationality,
		ioControl:   0xFF,
		Input:       &Input{Port1: 0xFF, Port2: 0xFF},
	}
}

// In reads a port. Only address bits 7, 6 and 0 are decoded.
func (e *SMSIO) In(addr uint8) uint8 {
	switch addr & 0xC1 {
	case 0x40:
		return e.vdp.ReadVCounter()
	case 0x41:
		return e.vdp.ReadHCounter()
	case 0x80:
		return e.vdp.ReadData()
	case 0x81:
		return e.vdp.ReadControl()
	case 0xC0:
		return e.Input.Port1
	case 0xC1:
		return e.Input.Port2&0x3F | e.thBits()
	}
	return 0xFF
}

// thBits returns bits 6-7 of $DD. A TH pin configured as output reads back
// the level written to $3F on export consoles and the inverse on Japanese
// ones, which is how software tells the two apart.
func (e *SMSIO) thBits() uint8 {
	var bits uint8
	for i, pin := range [2]struct{ dir, level uint8 }{{0x02, 0x20}, {0x08, 0x80}} {
		high := true
		if e.ioControl&pin.dir == 0 {
			high = e.ioControl&pin.level != 0
			if e.nationality == NationalityJapanese {
				high = !high
			}
		}
		if high {
			bits |= 0x40 << i
		}
	}
	return bits
}

// Out writes a port.
func (e *SMSIO) Out(addr uint8, value uint8) {
	switch addr & 0xC1 {
	case 0x01:
		e.ioControl = value
	case 0x40, 0x41:
		if e.psg != nil {
			e.psg.Write(value)
		}
	case 0x80:
		e.vdp.WriteData(value)
	case 0x81:
		e.vdp.WriteControl(value)
	}
}

// SetPad applies an emucore-style pad bitmask to a controller.
func (i *Input) SetPad(player int, pad uint8) {
	switch player {
	case 0:
		// P1 occupies $DC bits 0-5 in the same order as the pad bits.
		i.Port1 = i.Port1&0xC0 | ^pad&0x3F
	case 1:
		i.Port1 = i.Port1&0x3F | (^pad&0x03)<<6
		i.Port2 = i.Port2&0xF0 | (^pad>>2)&0x0F
	}
}
