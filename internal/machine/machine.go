// Package machine implements the Emulator Driver: it owns the CPU, bus,
// TTY device and debug core, and exposes the step/reset/accessor surface
// both a headless run loop and the GDB dispatcher call into. Grounded on
// original_source/src/emulator.cpp's driver-level functions.
package machine

import (
	"n8machine/internal/bus"
	"n8machine/internal/cpu"
	"n8machine/internal/debugger"
	"n8machine/internal/log"
	"n8machine/internal/romimage"
	"n8machine/internal/tty"
)

// Machine aggregates the whole emulator core behind one owning value, per
// spec.md §9's "single owning value" design note.
type Machine struct {
	Bus   *bus.Bus
	CPU   *cpu.CPU
	TTY   *tty.Device
	Debug *debugger.Core

	ROM     *romimage.ROM
	Symbols *romimage.Symbols

	running bool
}

// New constructs a fully wired, freshly reset machine.
func New() *Machine {
	c := cpu.New()
	t := tty.New()
	d := debugger.New()
	b := bus.New(c, t, d)
	m := &Machine{Bus: b, CPU: c, TTY: t, Debug: d}
	return m
}

// LoadROM loads rom at its fixed base address into the backing memory array
// and, if present, loads symbols.
func (m *Machine) LoadROM(rom *romimage.ROM, symbols *romimage.Symbols) {
	m.ROM = rom
	m.Symbols = symbols
	rom.LoadInto(m.Bus.Mem[:])
}

// Reset asserts RES for one tick, then resets the TTY and, if a ROM image
// is loaded, reloads it — mirroring original_source's emulator_reset, which
// re-applies the firmware image on every reset rather than trusting RAM
// contents to have survived.
func (m *Machine) Reset() {
	m.Bus.AssertReset()
	m.TTY.Reset()
	if m.ROM != nil {
		m.ROM.LoadInto(m.Bus.Mem[:])
	}
	log.ModMachine.Info("reset")
}

// Tick advances the bus (and therefore the CPU) by exactly one cycle.
func (m *Machine) Tick() { m.Bus.Tick() }

// SingleStep ticks the CPU until SYNC is reasserted (instruction boundary,
// SigTRAP) or m.Debug's configured step guard elapses without SYNC (CPU
// jammed, SigILL), the canonical primitive of spec.md §4.3.
func (m *Machine) SingleStep() int {
	for i := 0; i < m.Debug.StepGuard(); i++ {
		m.Bus.Tick()
		if m.Bus.Pins().SYNC() {
			return debugger.SigTRAP
		}
	}
	return debugger.SigILL
}

// Running reports whether the driver is free-running (a GDB `c` is in
// flight) rather than halted awaiting the next debugger command.
func (m *Machine) Running() bool { return m.running }

func (m *Machine) SetRunning(v bool) { m.running = v }

// CheckAndConsumeStop inspects the debug core's one-shot hit flags after a
// free-run tick and, if either fired, consumes it and reports the stop.
func (m *Machine) CheckAndConsumeStop() (sig int, watchAddr uint16, watchKind int, stopped bool) {
	if m.Debug.BreakpointHit() {
		m.Debug.ClearBreakpointHit()
		return debugger.SigTRAP, 0, 0, true
	}
	if m.Debug.WatchpointHit() {
		addr := m.Debug.WatchpointHitAddr()
		kind := m.Debug.WatchpointHitType()
		m.Debug.ClearWatchpointHit()
		return debugger.SigTRAP, addr, kind, true
	}
	return 0, 0, 0, false
}
