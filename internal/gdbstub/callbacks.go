package gdbstub

// Callbacks decouples the dispatcher from the emulator's internals, per
// spec.md §9's "callback interface vs. tight coupling" design note: the
// source inverts the GDB stub's dependency via a struct of function
// pointers so the dispatcher can be unit-tested against a mock. Watchpoint
// methods are mandatory here (Open Question #3 in DESIGN.md) rather than
// optional, since this implementation's Debug Core always carries the
// watchpoint tables.
type Callbacks interface {
	ReadReg8(n int) (uint8, bool)
	WriteReg8(n int, v uint8) bool
	ReadPC() uint16
	WritePC(v uint16)

	ReadMem(addr uint16) uint8
	WriteMem(addr uint16, v uint8)

	// StepInstruction executes one SYNC-aligned instruction and returns the
	// resulting stop signal (SigTRAP or SigILL).
	StepInstruction() int

	// Resume marks the driver as running freely. If addr is non-nil, PC is
	// loaded first. Side effects only — the caller (driver poll loop) is
	// responsible for actually ticking the CPU and noticing stops.
	Resume(addr *uint16)

	SetBreakpoint(addr uint16)
	ClearBreakpoint(addr uint16)
	ClearAllBreakpoints()

	SetWatchpoint(addr uint16, kind int) bool
	ClearWatchpoint(addr uint16, kind int) bool

	Reset()

	// RunMonitorCommand executes a qRcmd monitor command string and returns
	// textual output to relay as O<hex> packets before the terminating OK.
	RunMonitorCommand(cmd string) (output string, ok bool)
}
