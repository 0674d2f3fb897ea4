package bus

import (
	"n8machine/internal/cpu"
	"n8machine/internal/debugger"
	"n8machine/internal/tty"
	"testing"
)

func newTestBus(resetVector uint16) *Bus {
	c := cpu.New()
	t := tty.New()
	d := debugger.New()
	b := New(c, t, d)
	b.Mem[0xFFFC] = byte(resetVector)
	b.Mem[0xFFFD] = byte(resetVector >> 8)
	b.AssertReset()
	for i := 0; i < 6; i++ {
		b.Tick()
	}
	return b
}

func runProgram(b *Bus, ticks int) {
	for i := 0; i < ticks; i++ {
		b.Tick()
	}
}

func TestRAMRoundTrip(t *testing.T) {
	b := newTestBus(0x8000)
	b.Mem[0x8000] = 0xA9 // LDA #$55
	b.Mem[0x8001] = 0x55
	b.Mem[0x8002] = 0x85 // STA $20
	b.Mem[0x8003] = 0x20

	runProgram(b, 5)
	if b.Mem[0x20] != 0x55 {
		t.Fatalf("mem[0x20] = %#02x, want 0x55", b.Mem[0x20])
	}
}

func TestFrameBufferOverlayShadowsRAMOnRead(t *testing.T) {
	b := newTestBus(0x8000)
	// Write directly into the frame buffer overlay, bypassing RAM.
	b.FrameBuffer[0] = 'X'
	b.Mem[0xC000] = 0 // backing RAM left at zero

	b.Mem[0x8000] = 0xAD // LDA $C000
	b.Mem[0x8001] = 0x00
	b.Mem[0x8002] = 0xC0

	// Four bus cycles for LDA abs; the CPU consumes the operand byte on the
	// fifth tick.
	runProgram(b, 5)
	if b.CPU.A != 'X' {
		t.Fatalf("A = %#02x, want overlay byte 'X'", b.CPU.A)
	}
}

func TestIRQCellClearedEveryTick(t *testing.T) {
	b := newTestBus(0x8000)
	b.Mem[IRQCellAddr] = 0xFF
	b.Tick()
	if b.Mem[IRQCellAddr] != 0 {
		t.Fatalf("IRQ cell = %#02x, want cleared (no device asserted this tick)", b.Mem[IRQCellAddr])
	}
}

func TestTTYInjectRaisesIRQCellBit(t *testing.T) {
	b := newTestBus(0x8000)
	b.TTY.Inject('a')
	b.Tick()
	if b.Mem[IRQCellAddr]&tty.IRQBit == 0 {
		t.Fatalf("IRQ cell = %#02x, TTY bit not set with queued input", b.Mem[IRQCellAddr])
	}
}

func TestReadByteWriteByteBypassDevices(t *testing.T) {
	b := newTestBus(0x8000)
	b.WriteByte(0xC000, 'Z')
	if b.FrameBuffer[0] != 0 {
		t.Fatal("WriteByte must not touch the frame-buffer overlay")
	}
	if got := b.ReadByte(0xC000); got != 'Z' {
		t.Fatalf("ReadByte = %#02x, want 'Z'", got)
	}
}
