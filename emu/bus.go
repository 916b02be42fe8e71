package emu

// SMSBus presents Memory and SMSIO to the CPU as a go-chip-z80 Bus. Port
// numbers are truncated to the 8 bits the SMS decodes.
type SMSBus struct {
	mem *Memory
	io  *SMSIO
}

func NewSMSBus(mem *Memory, io *SMSIO) *SMSBus {
	return &SMSBus{mem: mem, io: io}
}

func (b *SMSBus) Fetch(addr uint16) uint8      { return b.mem.Get(addr) }
func (b *SMSBus) Read(addr uint16) uint8       { return b.mem.Get(addr) }
func (b *SMSBus) Write(addr uint16, val uint8) { b.mem.Set(addr, val) }
func (b *SMSBus) In(port uint16) uint8         { return b.io.In(uint8(port)) }
func (b *SMSBus) Out(port uint16, val uint8)   { b.io.Out(uint8(port), val) }
