package machine

import "n8machine/internal/snapshot"

// dumpState renders the driver's visible state to JSON, wired to the GDB
// "monitor state" command and the CLI's --dump-state flag (SPEC_FULL.md
// §4.12). The last stop signal is held by the GDB dispatcher, not the
// machine, so the dump's last_stop_signal field is always 0.
func (m *Machine) dumpState() string {
	symCount := 0
	if m.Symbols != nil {
		for addr := 0; addr < 65536; addr++ {
			symCount += len(m.Symbols.Lookup(uint16(addr)))
		}
	}
	st := snapshot.State{
		A: m.CPU.A, X: m.CPU.X, Y: m.CPU.Y, S: m.CPU.S, P: m.CPU.P,
		PC:          m.CPU.PC,
		Breakpoints: m.Debug.BreakpointCount(),
		Watchpoints: m.Debug.WatchpointCount(),
		TTYQueued:   m.TTY.Count(),
		Symbols:     symCount,
	}
	return string(snapshot.Encode(st))
}

// DumpState is the CLI-facing equivalent of the monitor command.
func (m *Machine) DumpState() string { return m.dumpState() }
