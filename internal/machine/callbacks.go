package machine

import "strings"

// ReadReg8 implements gdbstub.Callbacks register numbering: 0=A 1=X 2=Y
// 3=SP 5=P. Register 4 (PC) is 16-bit and goes through ReadPC instead.
func (m *Machine) ReadReg8(n int) (uint8, bool) {
	switch n {
	case 0:
		return m.CPU.A, true
	case 1:
		return m.CPU.X, true
	case 2:
		return m.CPU.Y, true
	case 3:
		return m.CPU.S, true
	case 5:
		return m.CPU.P, true
	default:
		return 0, false
	}
}

func (m *Machine) WriteReg8(n int, v uint8) bool {
	switch n {
	case 0:
		m.CPU.A = v
	case 1:
		m.CPU.X = v
	case 2:
		m.CPU.Y = v
	case 3:
		m.CPU.S = v
	case 5:
		m.CPU.P = v
	default:
		return false
	}
	return true
}

func (m *Machine) ReadPC() uint16     { return m.CPU.PC }
func (m *Machine) WritePC(v uint16)   { m.CPU.PC = v }

// ReadMem reads the backing array directly, never invoking a device's pop
// side effect — the memory view spec.md §4.5 requires for GDB's `m`.
func (m *Machine) ReadMem(addr uint16) uint8     { return m.Bus.ReadByte(addr) }
func (m *Machine) WriteMem(addr uint16, v uint8) { m.Bus.WriteByte(addr, v) }

func (m *Machine) StepInstruction() int { return m.SingleStep() }

func (m *Machine) Resume(addr *uint16) {
	if addr != nil {
		m.CPU.PC = *addr
	}
	m.SetRunning(true)
}

func (m *Machine) SetBreakpoint(addr uint16) {
	m.Debug.EnableBreakpoints(true)
	m.Debug.SetBreakpoint(addr)
}

func (m *Machine) ClearBreakpoint(addr uint16) { m.Debug.ClearBreakpoint(addr) }

func (m *Machine) ClearAllBreakpoints() { m.Debug.ClearAllBreakpoints() }

func (m *Machine) SetWatchpoint(addr uint16, kind int) bool {
	if !m.Debug.SetWatchpoint(addr, kind) {
		return false
	}
	m.Debug.EnableWatchpoints(true)
	return true
}

func (m *Machine) ClearWatchpoint(addr uint16, kind int) bool {
	return m.Debug.ClearWatchpoint(addr, kind)
}

// RunMonitorCommand implements the handful of qRcmd monitor commands this
// machine understands beyond the mandatory "reset" (handled directly by
// the dispatcher). "state" is the supplemental command SPEC_FULL.md §4.12
// wires to the JSON snapshot encoder; anything else is reported as
// unrecognized but still answered (GDB expects a reply either way).
func (m *Machine) RunMonitorCommand(cmd string) (output string, ok bool) {
	cmd = strings.TrimSpace(cmd)
	switch cmd {
	case "state":
		return m.dumpState(), true
	default:
		return "unrecognized monitor command: " + cmd + "\n", true
	}
}
