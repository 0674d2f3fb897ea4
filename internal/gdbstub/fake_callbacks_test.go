package gdbstub

import "n8machine/internal/debugger"

// fakeCallbacks is a minimal in-memory Callbacks implementation for testing
// the dispatcher and framer without a real Machine, per spec.md §9's
// callback-interface design note.
type fakeCallbacks struct {
	regs [4]uint8 // A X Y SP
	p    uint8
	pc   uint16
	mem  [65536]uint8

	stepSignal  int
	resumed     bool
	resumedAddr *uint16

	breakpoints map[uint16]bool
	watchpoints map[uint16]int

	resetCalled bool
	monitorCmd  string
}

func newFakeCallbacks() *fakeCallbacks {
	return &fakeCallbacks{
		breakpoints: map[uint16]bool{},
		watchpoints: map[uint16]int{},
		stepSignal:  debugger.SigTRAP,
	}
}

func (f *fakeCallbacks) ReadReg8(n int) (uint8, bool) {
	switch n {
	case 0, 1, 2, 3:
		return f.regs[n], true
	case 5:
		return f.p, true
	default:
		return 0, false
	}
}

func (f *fakeCallbacks) WriteReg8(n int, v uint8) bool {
	switch n {
	case 0, 1, 2, 3:
		f.regs[n] = v
	case 5:
		f.p = v
	default:
		return false
	}
	return true
}

func (f *fakeCallbacks) ReadPC() uint16   { return f.pc }
func (f *fakeCallbacks) WritePC(v uint16) { f.pc = v }

func (f *fakeCallbacks) ReadMem(addr uint16) uint8     { return f.mem[addr] }
func (f *fakeCallbacks) WriteMem(addr uint16, v uint8) { f.mem[addr] = v }

func (f *fakeCallbacks) StepInstruction() int { return f.stepSignal }

func (f *fakeCallbacks) Resume(addr *uint16) {
	f.resumed = true
	f.resumedAddr = addr
	if addr != nil {
		f.pc = *addr
	}
}

func (f *fakeCallbacks) SetBreakpoint(addr uint16)   { f.breakpoints[addr] = true }
func (f *fakeCallbacks) ClearBreakpoint(addr uint16) { delete(f.breakpoints, addr) }
func (f *fakeCallbacks) ClearAllBreakpoints()        { f.breakpoints = map[uint16]bool{} }

func (f *fakeCallbacks) SetWatchpoint(addr uint16, kind int) bool {
	switch kind {
	case debugger.WatchWrite, debugger.WatchRead, debugger.WatchAccess:
		f.watchpoints[addr] = kind
		return true
	default:
		return false
	}
}

func (f *fakeCallbacks) ClearWatchpoint(addr uint16, kind int) bool {
	if _, ok := f.watchpoints[addr]; !ok {
		return false
	}
	delete(f.watchpoints, addr)
	return true
}

func (f *fakeCallbacks) Reset() { f.resetCalled = true }

func (f *fakeCallbacks) RunMonitorCommand(cmd string) (string, bool) {
	f.monitorCmd = cmd
	if cmd == "state" {
		return "ok", true
	}
	return "", true
}
