// Package tty implements the machine's serial TTY device: an input byte
// queue fed by the driver's per-tick pump, an IRQ line tied to queue
// non-emptiness, and the register decode at 0xC100..0xC10F.
package tty

import "container/list"

// IRQBit is the bit this device asserts in the shared IRQ aggregation cell.
const IRQBit = 1 << 1

// Device holds the TTY's input queue and output sink. It has no output
// buffer: writes to the out-data register are forwarded synchronously.
type Device struct {
	in  list.List
	Out func(b byte)
}

// New returns an empty TTY with output discarded unless Out is set.
func New() *Device {
	return &Device{}
}

// Inject appends a byte to the input queue, as if it had arrived from the
// host keyboard or a test harness. Safe to call from the driver thread only
// (the queue is not synchronized — see internal/transport's driverLoop, the
// single goroutine that owns all emulator state and ticks the machine).
func (d *Device) Inject(b byte) {
	d.in.PushBack(b)
}

// Count reports the number of bytes currently queued.
func (d *Device) Count() int {
	return d.in.Len()
}

// Reset drains the input queue. It does not touch Out.
func (d *Device) Reset() {
	d.in.Init()
}

// Tick runs the device's per-cycle pump: it reports whether IRQBit should be
// asserted this tick. Callers that can source host input (stdin capture) do
// so before calling Tick and then Inject; Tick itself only observes queue
// state, matching the "no locking required on the input side" contract.
func (d *Device) Tick() (irqBit uint8) {
	if d.in.Len() > 0 {
		return IRQBit
	}
	return 0
}

// Decode implements the register map at offset reg = (addr-0xC100)&0x0F.
// read reports whether this access is a CPU read (true) or write (false);
// data is the byte being written on a write, ignored on a read. It returns
// the byte value: for a read, what the CPU should observe on the data bus;
// for a write, the return value is unused by callers.
func (d *Device) Decode(reg uint8, read bool, data uint8) uint8 {
	switch reg {
	case 0: // out-status
		return 0x00
	case 1: // out-data
		if !read && d.Out != nil {
			d.Out(data)
		}
		if read {
			return 0xFF
		}
		return 0
	case 2: // in-status
		if d.in.Len() > 0 {
			return 0x01
		}
		return 0x00
	case 3: // in-data
		if !read {
			return 0
		}
		// Safe underflow: an empty-queue read returns 0x00 without
		// touching the queue, unlike the legacy front()/pop() pairing
		// this device's C predecessor used.
		front := d.in.Front()
		if front == nil {
			return 0x00
		}
		d.in.Remove(front)
		return front.Value.(byte)
	default: // +4..+15: unmapped, read 0x00, ignore writes
		return 0x00
	}
}
