package machine

import (
	"strings"
	"testing"

	"n8machine/internal/debugger"
	"n8machine/internal/romimage"
)

func TestResetReloadsROMImage(t *testing.T) {
	m := New()
	rom := &romimage.ROM{Data: []byte{0xEA, 0xEA, 0xEA}}
	m.LoadROM(rom, nil)
	if m.Bus.Mem[romimage.LoadBase] != 0xEA {
		t.Fatal("ROM not loaded at LoadBase")
	}

	m.Reset()
	m.Bus.Mem[romimage.LoadBase] = 0x00 // simulate RAM corruption
	m.Reset()
	if m.Bus.Mem[romimage.LoadBase] != 0xEA {
		t.Fatal("Reset did not reload the ROM image")
	}
}

func TestSingleStepReachesSYNCBoundary(t *testing.T) {
	m := New()
	m.Bus.Mem[0xFFFC] = 0x00 // reset vector = 0x8000
	m.Bus.Mem[0xFFFD] = 0x80
	m.Bus.Mem[0x8000] = 0xEA // NOP
	m.Bus.Mem[0x8001] = 0xEA
	m.Reset()
	for i := 0; i < 6; i++ {
		m.Tick()
	}

	// The first step after reset consumes the vector's high byte, loads PC
	// and presents the first opcode fetch; it primes the pipeline rather
	// than executing an instruction. The second step covers the NOP itself.
	m.SingleStep()
	sig := m.SingleStep()
	if sig != debugger.SigTRAP {
		t.Fatalf("SingleStep() = %d, want SigTRAP", sig)
	}
}

func TestSingleStepReportsSigILLOnJam(t *testing.T) {
	m := New()
	m.Bus.Mem[0xFFFC] = 0x00 // reset vector = 0x8000
	m.Bus.Mem[0xFFFD] = 0x80
	m.Bus.Mem[0x8000] = 0x02 // canonical illegal opcode
	m.Reset()
	for i := 0; i < 6; i++ {
		m.Tick()
	}

	m.SingleStep()
	sig := m.SingleStep()
	if sig != debugger.SigILL {
		t.Fatalf("SingleStep() = %d, want SigILL", sig)
	}
}

func TestCheckAndConsumeStopReportsBreakpoint(t *testing.T) {
	m := New()
	m.Debug.EnableBreakpoints(true)
	m.Debug.SetBreakpoint(0x8000)
	m.Debug.CheckFetch(0x8000, true)

	sig, _, _, stopped := m.CheckAndConsumeStop()
	if !stopped || sig != debugger.SigTRAP {
		t.Fatalf("CheckAndConsumeStop() = (%d, _, _, %v), want (SigTRAP, _, _, true)", sig, stopped)
	}
	if _, _, _, stopped := m.CheckAndConsumeStop(); stopped {
		t.Fatal("breakpoint hit reported twice")
	}
}

func TestCallbacksReadWriteRegisters(t *testing.T) {
	m := New()
	if !m.WriteReg8(0, 0x42) {
		t.Fatal("WriteReg8(0, ...) failed")
	}
	v, ok := m.ReadReg8(0)
	if !ok || v != 0x42 {
		t.Fatalf("ReadReg8(0) = (%#02x, %v), want (0x42, true)", v, ok)
	}
	if _, ok := m.ReadReg8(4); ok {
		t.Fatal("register 4 (PC) must be rejected by ReadReg8; use ReadPC")
	}
}

func TestCallbacksResumeLoadsPC(t *testing.T) {
	m := New()
	addr := uint16(0x9000)
	m.Resume(&addr)
	if m.ReadPC() != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000", m.ReadPC())
	}
	if !m.Running() {
		t.Fatal("Resume did not mark the machine running")
	}
}

func TestRunMonitorCommandState(t *testing.T) {
	m := New()
	out, ok := m.RunMonitorCommand("state")
	if !ok {
		t.Fatal("RunMonitorCommand(state) reported !ok")
	}
	if !strings.Contains(out, "\"pc\"") {
		t.Fatalf("state dump = %q, want it to contain a pc field", out)
	}
}
