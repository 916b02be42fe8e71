package emu

import "testing"

func TestIO_DefaultPorts(t *testing.T) {
	io := NewSMSIO(NewVDP(), nil, NationalityExport)
	if got := io.In(0xDC); got != 0xFF {
		t.Errorf("$DC: expected 0xFF, got 0x%02X", got)
	}
	if got := io.In(0xDD); got != 0xFF {
		t.Errorf("$DD: expected 0xFF, got 0x%02X", got)
	}
}

func TestIO_PartialDecoding(t *testing.T) {
	vdp := NewVDP()
	io := NewSMSIO(vdp, nil, NationalityExport)
	io.Input.Port1 = 0xAA

	for _, port := range []uint8{0xC0, 0xDC, 0xFE} {
		if got := io.In(port); got != 0xAA {
			t.Errorf("port 0x%02X: expected 0xAA, got 0x%02X", port, got)
		}
	}

	vdp.SetVCounter(100)
	vdp.SetHCounter(0x33)
	if got := io.In(0x7E); got != 100 {
		t.Errorf("V counter: expected 100, got %d", got)
	}
	if got := io.In(0x7F); got != 0x33 {
		t.Errorf("H counter: expected 0x33, got 0x%02X", got)
	}
}

func TestIO_VDPRouting(t *testing.T) {
	vdp := NewVDP()
	io := NewSMSIO(vdp, nil, NationalityExport)

	io.Out(0xBF, 0x05)
	io.Out(0xBF, 0xC0)
	io.Out(0xBE, 0x2A)
	if vdp.cram[5] != 0x2A {
		t.Errorf("CRAM[5]: expected 0x2A, got 0x%02X", vdp.cram[5])
	}

	vdp.SetVBlank()
	if got := io.In(0xBF); got&0x80 == 0 {
		t.Errorf("status: expected VBlank bit, got 0x%02X", got)
	}
}

func TestIO_THReadback(t *testing.T) {
	tests := []struct {
		name        string
		nationality Nationality
		control     uint8
		want        uint8
	}{
		{"export high", NationalityExport, 0xF5, 0xC0},
		{"export low", NationalityExport, 0x55, 0x00},
		{"japanese high", NationalityJapanese, 0xF5, 0x00},
		{"japanese low", NationalityJapanese, 0x55, 0xC0},
		{"inputs float high", NationalityJapanese, 0xFF, 0xC0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			io := NewSMSIO(NewVDP(), nil, tc.nationality)
			io.Out(0x3F, tc.control)
			if got := io.In(0xDD) & 0xC0; got != tc.want {
				t.Errorf("expected 0x%02X, got 0x%02X", tc.want, got)
			}
		})
	}
}
