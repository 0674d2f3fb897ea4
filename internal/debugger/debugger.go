// Package debugger implements the Debug Core: breakpoint and watchpoint
// tables, one-shot hit flags, and the SYNC-aligned single-step primitive.
// It is grounded on original_source/src/emulator.cpp's bp_*/wp_* globals and
// accessor functions, collected into a single owned value per spec.md §9's
// "single owning value" design note rather than file-scope globals.
package debugger

// Watchpoint type codes, per spec.md §4.3.
const (
	WatchWrite  = 2
	WatchRead   = 3
	WatchAccess = 4
)

// Stop signal codes reported to the RSP layer, per spec.md §3.
const (
	SigNone  = 0
	SigINT   = 2
	SigILL   = 4
	SigTRAP  = 5
)

// StepGuard bounds the number of bus cycles a single-step primitive will
// tick through while waiting for SYNC before declaring the CPU jammed.
// 16 covers the longest well-defined 6502 instruction (spec.md §4.3).
const StepGuard = 16

// Core holds the breakpoint/watchpoint tables and their one-shot hit state.
type Core struct {
	bpEnable bool
	bp       [65536]bool

	wpEnable    bool
	wpWrite     [65536]bool
	wpRead      [65536]bool
	wpHit       bool
	wpHitAddr   uint16
	wpHitType   int

	bpHit     bool
	bpHitAddr uint16

	stepGuard int
}

func New() *Core {
	return &Core{stepGuard: StepGuard}
}

// SetStepGuard overrides the number of bus cycles SingleStep will tick
// through while waiting for SYNC before declaring the CPU jammed. n <= 0
// is ignored, leaving the previous (or default) guard count in place.
func (c *Core) SetStepGuard(n int) {
	if n > 0 {
		c.stepGuard = n
	}
}

// StepGuard returns the currently configured guard count, for use by
// SingleStep.
func (c *Core) StepGuard() int { return c.stepGuard }

func (c *Core) EnableBreakpoints(v bool) { c.bpEnable = v }
func (c *Core) EnableWatchpoints(v bool) { c.wpEnable = v }

func (c *Core) SetBreakpoint(addr uint16)   { c.bp[addr] = true }
func (c *Core) ClearBreakpoint(addr uint16) { c.bp[addr] = false }

// ClearAllBreakpoints removes every installed breakpoint and disables
// checking, used on GDB disconnect per spec.md §4.7.
func (c *Core) ClearAllBreakpoints() {
	for i := range c.bp {
		c.bp[i] = false
	}
	c.bpEnable = false
}

// SetWatchpoint installs addr into the table(s) selected by kind (2=write,
// 3=read, 4=access/both). Any other kind is a no-op, letting callers detect
// "unsupported" by checking whether anything changed — see internal/gdbstub.
func (c *Core) SetWatchpoint(addr uint16, kind int) bool {
	switch kind {
	case WatchWrite:
		c.wpWrite[addr] = true
	case WatchRead:
		c.wpRead[addr] = true
	case WatchAccess:
		c.wpWrite[addr] = true
		c.wpRead[addr] = true
	default:
		return false
	}
	return true
}

func (c *Core) ClearWatchpoint(addr uint16, kind int) bool {
	switch kind {
	case WatchWrite:
		c.wpWrite[addr] = false
	case WatchRead:
		c.wpRead[addr] = false
	case WatchAccess:
		c.wpWrite[addr] = false
		c.wpRead[addr] = false
	default:
		return false
	}
	return true
}

// CheckFetch is called by the bus fabric on every cycle; it latches a
// breakpoint hit only on an instruction-fetch (SYNC) cycle, per spec.md's
// invariant that data loads at a breakpointed address never fire.
func (c *Core) CheckFetch(addr uint16, sync bool) {
	if c.bpEnable && sync && c.bp[addr] {
		c.bpHit = true
		c.bpHitAddr = addr
	}
}

// CheckAccess is called by the bus fabric on every cycle; write is true for
// a CPU write cycle. A watchpoint read never fires on a SYNC (fetch) cycle —
// the fabric should pass sync=false for data accesses only.
func (c *Core) CheckAccess(addr uint16, write, sync bool) {
	if !c.wpEnable {
		return
	}
	switch {
	case write && c.wpWrite[addr]:
		c.latchWatch(addr, WatchWrite)
	case !write && !sync && c.wpRead[addr]:
		c.latchWatch(addr, WatchRead)
	}
}

func (c *Core) latchWatch(addr uint16, kind int) {
	if c.wpHit {
		return // one-shot until consumed
	}
	c.wpHit = true
	c.wpHitAddr = addr
	c.wpHitType = kind
}

func (c *Core) BreakpointHit() bool { return c.bpHit }

func (c *Core) ClearBreakpointHit() { c.bpHit = false }

func (c *Core) BreakpointHitAddr() uint16 { return c.bpHitAddr }

func (c *Core) WatchpointHit() bool { return c.wpHit }

func (c *Core) ClearWatchpointHit() { c.wpHit = false }

func (c *Core) WatchpointHitAddr() uint16 { return c.wpHitAddr }

func (c *Core) WatchpointHitType() int { return c.wpHitType }

// BreakpointCount and WatchpointCount support diagnostic snapshots; they are
// not on the hot per-tick path.
func (c *Core) BreakpointCount() int {
	n := 0
	for _, v := range c.bp {
		if v {
			n++
		}
	}
	return n
}

func (c *Core) WatchpointCount() int {
	n := 0
	for i := range c.wpWrite {
		if c.wpWrite[i] || c.wpRead[i] {
			n++
		}
	}
	return n
}
