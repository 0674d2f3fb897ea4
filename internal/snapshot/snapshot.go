// Package snapshot encodes a diagnostic dump of the emulator driver's
// visible state to JSON using go-faster/jx's streaming encoder — the
// teacher's declared but, in the retrieved sources, unexercised dependency
// (see DESIGN.md). Wired into the CLI's --dump-state flag and the GDB
// dispatcher's "monitor state" command.
package snapshot

import "github.com/go-faster/jx"

// State is the subset of driver state worth dumping: CPU registers, the
// last reported stop signal, debug-table occupancy, and symbol coverage.
type State struct {
	A, X, Y, S, P uint8
	PC            uint16
	LastStopSig   int
	Breakpoints   int
	Watchpoints   int
	TTYQueued     int
	Symbols       int
}

// Encode renders st as a compact JSON object.
func Encode(st State) []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("a")
	e.UInt8(st.A)
	e.FieldStart("x")
	e.UInt8(st.X)
	e.FieldStart("y")
	e.UInt8(st.Y)
	e.FieldStart("sp")
	e.UInt8(st.S)
	e.FieldStart("flags")
	e.UInt8(st.P)
	e.FieldStart("pc")
	e.UInt16(st.PC)
	e.FieldStart("last_stop_signal")
	e.Int(st.LastStopSig)
	e.FieldStart("breakpoints")
	e.Int(st.Breakpoints)
	e.FieldStart("watchpoints")
	e.Int(st.Watchpoints)
	e.FieldStart("tty_queued")
	e.Int(st.TTYQueued)
	e.FieldStart("symbols")
	e.Int(st.Symbols)

	e.ObjEnd()
	return e.Bytes()
}
