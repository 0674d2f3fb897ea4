package cpu

import "testing"

// busModel is a tiny flat-memory bus, sufficient to exercise the
// instruction-level tests below.
type busModel struct {
	mem [65536]byte
}

// step resolves the read cycle the CPU presented on the previous step from
// mem, ticks c once, and commits the new cycle to mem if it is a write. Reads
// are resolved lazily, at the start of the next step, so a test may poke
// program bytes into mem after the opcode fetch has been presented.
func (b *busModel) step(c *CPU, pins Pins) Pins {
	if pins.RW() {
		pins = pins.WithData(b.mem[pins.Addr()])
	}
	pins = c.Tick(pins)
	if !pins.RW() {
		b.mem[pins.Addr()] = pins.Data()
	}
	return pins
}

// newTestCPU runs the 7-cycle reset sequence plus one more step, whose Tick
// consumes the vector's high byte, loads PC and presents the first opcode
// fetch at resetVector. The returned pins must be passed to the next step.
func newTestCPU(resetVector uint16) (*CPU, *busModel, Pins) {
	b := &busModel{}
	b.mem[vectorReset] = byte(resetVector)
	b.mem[vectorReset+1] = byte(resetVector >> 8)
	c := New()
	var pins Pins
	for i := 0; i < 8; i++ {
		pins = b.step(c, pins)
	}
	return c, b, pins
}

func TestResetLoadsVector(t *testing.T) {
	c, _, _ := newTestCPU(0x8000)
	if c.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000", c.PC)
	}
	if c.resetting {
		t.Fatal("still resetting after 7 cycles")
	}
}

func TestLDAImmediateSetsZeroFlag(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0xA9 // LDA #imm
	b.mem[0x8001] = 0x00

	for i := 0; i < 2; i++ {
		pins = b.step(c, pins)
	}
	if c.A != 0 {
		t.Fatalf("A = %#02x, want 0", c.A)
	}
	if c.P&flagZ == 0 {
		t.Fatal("Z flag not set after loading 0")
	}
}

func TestLDAImmediateSetsNegativeFlag(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0xA9
	b.mem[0x8001] = 0x80

	for i := 0; i < 2; i++ {
		pins = b.step(c, pins)
	}
	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A)
	}
	if c.P&flagN == 0 {
		t.Fatal("N flag not set after loading 0x80")
	}
}

func TestSTAAbsoluteWritesMemory(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0xA9 // LDA #$42
	b.mem[0x8001] = 0x42
	b.mem[0x8002] = 0x8D // STA $1234
	b.mem[0x8003] = 0x34
	b.mem[0x8004] = 0x12

	for i := 0; i < 6; i++ {
		pins = b.step(c, pins)
	}
	if b.mem[0x1234] != 0x42 {
		t.Fatalf("mem[0x1234] = %#02x, want 0x42", b.mem[0x1234])
	}
}

func TestUnknownOpcodeJams(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0x02 // canonical illegal opcode

	pins = b.step(c, pins) // resolves the fetch, which decodes to a jam
	for i := 0; i < 4; i++ {
		pins = b.step(c, pins)
	}
	if !c.jammed {
		t.Fatal("CPU did not jam on illegal opcode 0x02")
	}
	if pins.SYNC() {
		t.Fatal("jammed CPU must never reassert SYNC")
	}
}

func TestBRKPushesStatusWithBFlag(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0x00 // BRK
	b.mem[vectorIRQ] = 0x00
	b.mem[vectorIRQ+1] = 0x90

	sp := c.S
	for i := 0; i < 7; i++ {
		pins = b.step(c, pins)
	}
	if c.PC != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000", c.PC)
	}
	// BRK pushes PCH, then PCL, then P, decrementing S on each push; P lands
	// two slots below the pre-BRK stack pointer.
	pushedStatus := b.mem[0x0100+uint16(sp-2)]
	if pushedStatus&flagB == 0 {
		t.Fatal("BRK must push status with B flag set")
	}
}

func TestBranchNotTakenAdvancesTwoBytes(t *testing.T) {
	c, b, pins := newTestCPU(0x8000)
	b.mem[0x8000] = 0xF0 // BEQ
	b.mem[0x8001] = 0x10
	c.P &^= flagZ

	for i := 0; i < 2; i++ {
		pins = b.step(c, pins)
	}
	if c.PC != 0x8002 {
		t.Fatalf("PC = %#04x, want 0x8002 (branch not taken)", c.PC)
	}
}
