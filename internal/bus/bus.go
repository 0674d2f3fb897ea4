// Package bus implements the Bus & Device Fabric: the per-tick memory map
// decoder, the IRQ aggregation cell, and the frame-buffer/TTY overlays. It
// is the contract the CPU sees, grounded on
// original_source/src/emulator.cpp's emulator_step/BUS_DECODE.
package bus

import (
	"n8machine/internal/cpu"
	"n8machine/internal/debugger"
	"n8machine/internal/log"
	"n8machine/internal/tty"
)

// IRQCellAddr is the zero-page byte repurposed as a per-device IRQ bitmap
// (spec.md §3). Bit 1 is reserved for the TTY device (spec.md §9).
const IRQCellAddr = 0x00FF

const (
	frameBufferBase = 0xC000
	frameBufferMask = 0xFF00
	ttyBase         = 0xC100
	ttyMask         = 0xFFF0
)

// Bus owns the flat 64 KiB address space, the frame-buffer overlay, the TTY
// device, the CPU, and the debug core's bp/wp tables it consults each cycle.
type Bus struct {
	Mem         [65536]byte
	FrameBuffer [256]byte

	CPU   *cpu.CPU
	TTY   *tty.Device
	Debug *debugger.Core

	pins      cpu.Pins
	TickCount uint64

	// CurrentInstrAddr tracks the fetch-cycle address of the instruction
	// currently executing, the "current instruction" anchor spec.md §4.1
	// step 3 reserves for UI use. Exported for symbol-aware front ends.
	CurrentInstrAddr uint16
}

// New wires a freshly constructed CPU, TTY device and debug core together.
func New(c *cpu.CPU, t *tty.Device, d *debugger.Core) *Bus {
	return &Bus{CPU: c, TTY: t, Debug: d}
}

// Tick advances the machine by one bus cycle, implementing spec.md §4.1's
// ten-step algorithm verbatim.
func (b *Bus) Tick() {
	// 1. Clear the IRQ aggregation cell.
	b.Mem[IRQCellAddr] = 0

	// 2. Drive pins into the CPU.
	b.pins = b.CPU.Tick(b.pins)
	addr := b.pins.Addr()

	// 3. Track the current-instruction anchor.
	if b.pins.SYNC() {
		b.CurrentInstrAddr = addr
	}

	// 4. Breakpoint check — fetch cycles only.
	b.Debug.CheckFetch(addr, b.pins.SYNC())

	// 5. Watchpoint check.
	b.Debug.CheckAccess(addr, !b.pins.RW(), b.pins.SYNC())

	// 6. Device I/O pump (TTY keyboard poll / queue-driven IRQ).
	irqBits := b.TTY.Tick()
	b.Mem[IRQCellAddr] |= irqBits

	// 7. IRQ line. Preserve the source's literal polarity (see DESIGN.md
	// Open Questions): pin asserted iff the cell is nonzero.
	b.pins = b.pins.WithIRQ(b.Mem[IRQCellAddr] != 0)

	// 8. Shadow write/read.
	if b.pins.RW() {
		b.pins = b.pins.WithData(b.Mem[addr])
	} else {
		b.Mem[addr] = b.pins.Data()
	}

	// 9. Overlays, in order.
	if addr&frameBufferMask == frameBufferBase {
		off := addr - frameBufferBase
		if b.pins.RW() {
			b.pins = b.pins.WithData(b.FrameBuffer[off])
		} else {
			b.FrameBuffer[off] = b.pins.Data()
		}
	} else if addr&ttyMask == ttyBase {
		reg := uint8(addr-ttyBase) & 0x0F
		if b.pins.RW() {
			v := b.TTY.Decode(reg, true, 0)
			b.pins = b.pins.WithData(v)
		} else {
			b.TTY.Decode(reg, false, b.pins.Data())
		}
	}

	// 10. Tick counter.
	b.TickCount++

	log.ModBus.Debugf("tick=%d addr=%04x rw=%v sync=%v data=%02x", b.TickCount, addr, b.pins.RW(), b.pins.SYNC(), b.pins.Data())
}

// AssertReset drives the RES pin for exactly one tick, kicking off the
// CPU's reset sequence.
func (b *Bus) AssertReset() {
	b.pins = b.pins.WithRES(true)
	b.Tick()
	b.pins = b.pins.WithRES(false)
}

// Pins exposes the most recently driven pin word, mainly for tests that
// need to observe SYNC without reaching into package internals.
func (b *Bus) Pins() cpu.Pins { return b.pins }

// ReadByte reads the backing array directly — the same array the CPU's
// shadow-write policy commits to — without invoking any device-pop side
// effects. This is the memory view spec.md §4.5 requires for GDB's `m`.
func (b *Bus) ReadByte(addr uint16) byte { return b.Mem[addr] }

// WriteByte writes the backing array directly, bypassing device overlays.
// GDB's `M` is specified in terms of the address space, not device
// side-effects; overlay state (frame buffer, TTY queue) is untouched.
func (b *Bus) WriteByte(addr uint16, v byte) { b.Mem[addr] = v }
