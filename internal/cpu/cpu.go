// Package cpu implements a tick-driven MOS 6502-family core behind the pin
// word contract of Pins. It intentionally decodes only a practical subset of
// the instruction set — enough to exercise the bus fabric, debug core and
// RSP engine end to end — and treats any other opcode as a jam: the CPU
// keeps re-presenting the same address without asserting SYNC, which is
// exactly what the debug core's single-step guard is built to detect.
package cpu

const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7
)

const (
	vectorNMI   uint16 = 0xFFFA
	vectorReset uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
)

// step is one bus cycle: present addr on the bus, either as a read (After
// receives the byte the bus placed on the data line) or a write (Data is
// driven onto the bus). SYNC marks an instruction-fetch cycle.
type step struct {
	addr  uint16
	write bool
	data  uint8
	sync  bool
	after func(data uint8)
}

// CPU is a single 6502-family core advanced one bus cycle per Tick call.
type CPU struct {
	A, X, Y, S, P uint8
	PC            uint16

	queue []step
	pos   int

	havePending  bool
	pendingAfter func(uint8)

	resetting  bool
	needNMI    bool
	prevNMI    bool
	irqLine    bool
	jammed     bool
	jamAddr    uint16
}

// New returns a CPU that begins its life running the reset sequence, mirroring
// power-on behaviour: the first Ticks read the reset vector before any
// instruction executes.
func New() *CPU {
	c := &CPU{S: 0xFD, P: flagI | flagU}
	c.resetting = true
	return c
}

// Tick advances the CPU by one bus cycle. pins carries, on entry, the bus's
// resolution of the *previous* cycle (Data(), for a read) plus the current
// state of the RES/NMI/IRQ input lines; it returns the address/RW/SYNC/DATA
// this cycle drives.
func (c *CPU) Tick(pins Pins) Pins {
	if c.havePending {
		fn := c.pendingAfter
		c.havePending = false
		c.pendingAfter = nil
		if fn != nil {
			fn(pins.Data())
		}
	}

	if pins.RES() {
		c.beginReset()
	} else {
		if pins.NMI() && !c.prevNMI {
			c.needNMI = true
		}
		c.prevNMI = pins.NMI()
		c.irqLine = pins.IRQ()
	}

	if c.pos >= len(c.queue) {
		c.pos = 0
		c.queue = c.queue[:0]
		switch {
		case c.resetting:
			c.resetting = false
			c.queue = c.buildResetSteps()
		case c.needNMI:
			c.needNMI = false
			c.queue = c.buildInterruptSteps(vectorNMI, false)
		case c.irqLine && c.P&flagI == 0 && !c.jammed:
			c.queue = c.buildInterruptSteps(vectorIRQ, false)
		case c.jammed:
			c.queue = append(c.queue, step{addr: c.jamAddr})
		default:
			pc := c.PC
			c.queue = append(c.queue, step{addr: pc, sync: true, after: func(op uint8) {
				c.PC++
				c.decode(pc, op)
			}})
		}
	}

	s := c.queue[c.pos]
	c.pos++

	pins = pins.WithAddr(s.addr).WithSYNC(s.sync)
	if s.write {
		pins = pins.WithRW(false).WithData(s.data)
	} else {
		pins = pins.WithRW(true)
		c.havePending = true
		c.pendingAfter = s.after
	}
	return pins
}

func (c *CPU) beginReset() {
	c.resetting = true
	c.jammed = false
	c.queue = c.queue[:0]
	c.pos = 0
	c.havePending = false
}

// buildResetSteps mimics the real 7-cycle reset sequence closely enough for
// the vector fetch to matter: two dummy reads, three dummy stack pushes
// (S decrements but nothing is written, matching real silicon), then the
// little-endian vector read.
func (c *CPU) buildResetSteps() []step {
	var lo uint8
	return []step{
		{addr: c.PC},
		{addr: c.PC},
		{addr: 0x0100 | uint16(c.S)},
		{addr: 0x0100 | uint16(c.S-1)},
		{addr: 0x0100 | uint16(c.S-2)},
		{addr: vectorReset, after: func(data uint8) { lo = data }},
		{addr: vectorReset + 1, after: func(data uint8) {
			c.S -= 3
			c.PC = uint16(lo) | uint16(data)<<8
		}},
	}
}

// buildInterruptSteps implements the BRK/IRQ/NMI entry sequence: one dummy
// read at PC (for BRK this follows the opcode fetch, and PC has already been
// advanced past the padding byte), push PCH, PCL, P (with B set only for
// BRK), then fetch the vector and set I.
func (c *CPU) buildInterruptSteps(vector uint16, isBRK bool) []step {
	p := c.P &^ flagB
	if isBRK {
		p |= flagB
	}
	p |= flagU
	var lo uint8
	return []step{
		{addr: c.PC},
		{addr: 0x0100 | uint16(c.S), write: true, data: uint8(c.PC >> 8)},
		{addr: 0x0100 | uint16(c.S-1), write: true, data: uint8(c.PC)},
		{addr: 0x0100 | uint16(c.S-2), write: true, data: p},
		{addr: vector, after: func(data uint8) { lo = data }},
		{addr: vector + 1, after: func(data uint8) {
			c.S -= 3
			c.P |= flagI
			c.PC = uint16(lo) | uint16(data)<<8
		}},
	}
}

func (c *CPU) jam(addr uint16) {
	c.jammed = true
	c.jamAddr = addr
}

func (c *CPU) setNZ(v uint8) {
	c.P &^= flagN | flagZ
	if v == 0 {
		c.P |= flagZ
	}
	if v&0x80 != 0 {
		c.P |= flagN
	}
}

func (c *CPU) push(v uint8, after func()) step {
	s := step{addr: 0x0100 | uint16(c.S), write: true, data: v}
	c.S--
	if after != nil {
		after()
	}
	return s
}
