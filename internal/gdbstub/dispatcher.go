// Package gdbstub implements the GDB Remote Serial Protocol engine: the
// byte-framing state machine (Framer) and the command dispatcher, grounded
// throughout on original_source/src/gdb_stub.cpp.
package gdbstub

import (
	"strconv"
	"strings"

	"n8machine/internal/debugger"
	"n8machine/internal/log"
)

// Dispatcher maps a decoded RSP packet payload to one or more response
// payloads. It holds exactly the two pieces of session state spec.md §2
// assigns to this component: no-ack mode and the last reported stop signal.
type Dispatcher struct {
	cb    Callbacks
	NoAck bool

	LastStopSignal int
}

func NewDispatcher(cb Callbacks) *Dispatcher {
	return &Dispatcher{cb: cb, LastStopSignal: debugger.SigTRAP}
}

// SetLastStopSignal records the most recent stop signal, for the "?" query
// and for the Ctrl-C interrupt path (framer.go).
func (d *Dispatcher) SetLastStopSignal(sig int) { d.LastStopSignal = sig }

// Dispatch decodes payload's command byte and returns the response
// payload(s) to send, in order. 'c', 'vCont;c' and 'k' return nil (no
// immediate reply); every other handler but qRcmd returns exactly one
// payload; qRcmd may return an O<hex> output packet followed by a
// terminating OK, implemented as two separate packets per spec.md §9's
// resolution of the legacy concatenated-reply bug.
func (d *Dispatcher) Dispatch(payload string) []string {
	if payload == "" {
		return []string{""}
	}
	switch payload[0] {
	case '?':
		return one(d.stopReply(d.LastStopSignal))
	case 'g':
		return one(d.handleReadAll())
	case 'G':
		return one(d.handleWriteAll(payload[1:]))
	case 'p':
		return one(d.handleReadOne(payload[1:]))
	case 'P':
		return one(d.handleWriteOne(payload[1:]))
	case 'm':
		return one(d.handleReadMem(payload[1:]))
	case 'M':
		return one(d.handleWriteMem(payload[1:]))
	case 's':
		return one(d.handleStep(payload[1:]))
	case 'c':
		d.handleContinue(payload[1:])
		return nil // no immediate reply; the driver delivers an async stop later
	case 'Z':
		return one(d.handleSetBreakWatch(payload[1:]))
	case 'z':
		return one(d.handleClearBreakWatch(payload[1:]))
	case 'H':
		return one("OK")
	case 'D':
		return one("OK")
	case 'k':
		return nil // no reply; caller marks the session killed
	case 'q':
		return d.handleQuery(payload[1:])
	case 'Q':
		return one(d.handleSetQuery(payload[1:]))
	case 'v':
		return d.handleV(payload[1:])
	default:
		log.ModGDBStub.Debugf("unsupported packet %q", payload)
		return one("")
	}
}

func one(s string) []string { return []string{s} }

func (d *Dispatcher) stopReply(sig int) string {
	return "T" + toHexByte(uint8(sig)) + "thread:01;"
}

// StopReplyPacket is the exported, watchpoint-aware form of stopReply used
// by internal/transport to render an asynchronous stop that the driver
// goroutine generates outside of a direct Dispatch call (a breakpoint or
// watchpoint hit during a free-run). watchKind is one of
// debugger.WatchWrite/WatchRead/WatchAccess, or 0 for a plain stop.
func (d *Dispatcher) StopReplyPacket(sig int, watchAddr uint16, watchKind int) string {
	label := ""
	switch watchKind {
	case debugger.WatchWrite:
		label = "watch"
	case debugger.WatchRead:
		label = "rwatch"
	case debugger.WatchAccess:
		label = "awatch"
	}
	if label == "" {
		return d.stopReply(sig)
	}
	return "T" + toHexByte(uint8(sig)) + label + ":" + toHexLE16AsBE(watchAddr) + ";thread:01;"
}

// toHexLE16AsBE renders addr as big-endian hex, the convention GDB expects
// for a watch: address field (unlike register values, which are
// little-endian per spec.md §4.5).
func toHexLE16AsBE(addr uint16) string {
	return toHexByte(uint8(addr>>8)) + toHexByte(uint8(addr))
}

// Register numbering per spec.md §4.5: 0=A 1=X 2=Y 3=SP 4=PC(16) 5=P.
const regPC = 4

func (d *Dispatcher) handleReadAll() string {
	var b strings.Builder
	for n := 0; n <= 3; n++ {
		v, _ := d.cb.ReadReg8(n)
		b.WriteString(toHexByte(v))
	}
	b.WriteString(toHexLE16(d.cb.ReadPC()))
	v, _ := d.cb.ReadReg8(5)
	b.WriteString(toHexByte(v))
	return b.String()
}

func (d *Dispatcher) handleWriteAll(data string) string {
	bytes, err := hexDecode(data)
	if err != nil || len(bytes) != 7 {
		return errMalformedWire
	}
	for n := 0; n <= 3; n++ {
		d.cb.WriteReg8(n, bytes[n])
	}
	d.cb.WritePC(uint16(bytes[4]) | uint16(bytes[5])<<8)
	d.cb.WriteReg8(5, bytes[6])
	return "OK"
}

func (d *Dispatcher) handleReadOne(arg string) string {
	n, err := strconv.ParseInt(arg, 16, 32)
	if err != nil {
		return errMalformedWire
	}
	if int(n) == regPC {
		return toHexLE16(d.cb.ReadPC())
	}
	v, ok := d.cb.ReadReg8(int(n))
	if !ok {
		return errBadReg
	}
	return toHexByte(v)
}

func (d *Dispatcher) handleWriteOne(arg string) string {
	parts := strings.SplitN(arg, "=", 2)
	if len(parts) != 2 {
		return errMalformedWire
	}
	n, err := strconv.ParseInt(parts[0], 16, 32)
	if err != nil {
		return errMalformedWire
	}
	if int(n) == regPC {
		bytes, err := hexDecode(parts[1])
		if err != nil || len(bytes) != 2 {
			return errMalformedWire
		}
		d.cb.WritePC(uint16(bytes[0]) | uint16(bytes[1])<<8)
		return "OK"
	}
	bytes, err := hexDecode(parts[1])
	if err != nil || len(bytes) != 1 {
		return errMalformedWire
	}
	if !d.cb.WriteReg8(int(n), bytes[0]) {
		return errBadReg
	}
	return "OK"
}

func (d *Dispatcher) handleReadMem(arg string) string {
	addr, length, err := parseAddrLen(arg)
	if err != nil {
		return errMalformedWire
	}
	if uint32(addr)+uint32(length) > 0x10000 {
		return errRange
	}
	buf := make([]byte, length)
	for i := 0; i < length; i++ {
		buf[i] = d.cb.ReadMem(addr + uint16(i))
	}
	return hexEncode(buf)
}

func (d *Dispatcher) handleWriteMem(arg string) string {
	head, data, found := strings.Cut(arg, ":")
	if !found {
		return errMalformedWire
	}
	addr, length, err := parseAddrLen(head)
	if err != nil {
		return errMalformedWire
	}
	if uint32(addr)+uint32(length) > 0x10000 {
		return errRange
	}
	bytes, err := hexDecode(data)
	if err != nil || len(bytes) != length {
		return errMalformedWire
	}
	for i, v := range bytes {
		d.cb.WriteMem(addr+uint16(i), v)
	}
	return "OK"
}

func parseAddrLen(arg string) (addr uint16, length int, err error) {
	head, tail, found := strings.Cut(arg, ",")
	if !found {
		return 0, 0, errMalformed
	}
	a, err := strconv.ParseUint(head, 16, 32)
	if err != nil {
		return 0, 0, errMalformed
	}
	l, err := strconv.ParseUint(tail, 16, 32)
	if err != nil {
		return 0, 0, errMalformed
	}
	return uint16(a), int(l), nil
}

func (d *Dispatcher) handleStep(arg string) string {
	if arg != "" {
		if v, err := strconv.ParseUint(arg, 16, 32); err == nil {
			d.cb.WritePC(uint16(v))
		}
	}
	sig := d.cb.StepInstruction()
	d.SetLastStopSignal(sig)
	return d.stopReply(sig)
}

func (d *Dispatcher) handleContinue(arg string) {
	if arg != "" {
		if v, err := strconv.ParseUint(arg, 16, 32); err == nil {
			addr := uint16(v)
			d.cb.Resume(&addr)
			return
		}
	}
	d.cb.Resume(nil)
}

func (d *Dispatcher) handleSetBreakWatch(arg string) string {
	kind, addr, _, err := parseZPacket(arg)
	if err != nil {
		return errMalformedWire
	}
	switch kind {
	case 0, 1:
		d.cb.SetBreakpoint(addr)
		return "OK"
	case debugger.WatchWrite, debugger.WatchRead, debugger.WatchAccess:
		if !d.cb.SetWatchpoint(addr, kind) {
			return ""
		}
		return "OK"
	default:
		return ""
	}
}

func (d *Dispatcher) handleClearBreakWatch(arg string) string {
	kind, addr, _, err := parseZPacket(arg)
	if err != nil {
		return errMalformedWire
	}
	switch kind {
	case 0, 1:
		d.cb.ClearBreakpoint(addr)
		return "OK"
	case debugger.WatchWrite, debugger.WatchRead, debugger.WatchAccess:
		if !d.cb.ClearWatchpoint(addr, kind) {
			return ""
		}
		return "OK"
	default:
		return ""
	}
}

// parseZPacket parses "kind,addr,len" as used by both Z and z packets.
func parseZPacket(arg string) (kind int, addr uint16, length int, err error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return 0, 0, 0, errMalformed
	}
	k, err := strconv.ParseInt(parts[0], 16, 32)
	if err != nil {
		return 0, 0, 0, errMalformed
	}
	a, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, 0, errMalformed
	}
	l, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return 0, 0, 0, errMalformed
	}
	return int(k), uint16(a), int(l), nil
}

func (d *Dispatcher) handleQuery(arg string) []string {
	switch {
	case arg == "Supported" || strings.HasPrefix(arg, "Supported:"):
		return one("PacketSize=20000;QStartNoAckMode+;qXfer:features:read+;qXfer:memory-map:read+")
	case strings.HasPrefix(arg, "Xfer:features:read:target.xml:"):
		return one(d.handleQXfer(targetXML, strings.TrimPrefix(arg, "Xfer:features:read:target.xml:")))
	case strings.HasPrefix(arg, "Xfer:memory-map:read::"):
		return one(d.handleQXfer(memoryMapXML, strings.TrimPrefix(arg, "Xfer:memory-map:read::")))
	case arg == "fThreadInfo":
		return one("m01")
	case arg == "sThreadInfo":
		return one("l")
	case arg == "C":
		return one("QC01")
	case arg == "Attached":
		return one("1")
	case strings.HasPrefix(arg, "Rcmd,"):
		return d.handleQRcmd(strings.TrimPrefix(arg, "Rcmd,"))
	default:
		return one("")
	}
}

func (d *Dispatcher) handleQXfer(blob, rest string) string {
	off, length, err := parseAddrLenHex(rest)
	if err != nil {
		return errMalformedWire
	}
	return qXferRead(blob, off, length)
}

func parseAddrLenHex(arg string) (off, length int, err error) {
	head, tail, found := strings.Cut(arg, ",")
	if !found {
		return 0, 0, errMalformed
	}
	o, err := strconv.ParseUint(head, 16, 32)
	if err != nil {
		return 0, 0, errMalformed
	}
	l, err := strconv.ParseUint(tail, 16, 32)
	if err != nil {
		return 0, 0, errMalformed
	}
	return int(o), int(l), nil
}

// handleQRcmd implements the qRcmd monitor-command path conformantly
// (DESIGN.md Open Question #2): an unrecognized or informational command
// produces a separate O<hex> packet before the terminating OK, rather than
// the legacy single concatenated reply.
func (d *Dispatcher) handleQRcmd(hexCmd string) []string {
	raw, err := hexDecode(hexCmd)
	if err != nil {
		return one(errMalformedWire)
	}
	cmd := string(raw)
	if cmd == "reset" {
		d.cb.Reset()
		return one("OK")
	}
	output, ok := d.cb.RunMonitorCommand(cmd)
	if !ok {
		return one("")
	}
	if output == "" {
		return one("OK")
	}
	return []string{"O" + hexEncode([]byte(output)), "OK"}
}

func (d *Dispatcher) handleSetQuery(arg string) string {
	if arg == "StartNoAckMode" {
		d.NoAck = true
		return "OK"
	}
	return ""
}

func (d *Dispatcher) handleV(arg string) []string {
	switch {
	case arg == "Cont?":
		return one("vCont;c;s;t")
	case strings.HasPrefix(arg, "Cont;"):
		return d.handleVCont(strings.TrimPrefix(arg, "Cont;"))
	default:
		return one("")
	}
}

func (d *Dispatcher) handleVCont(action string) []string {
	// Only the simple single-thread forms are accepted; anything with a
	// ":tid" suffix is trimmed since this machine has exactly one thread.
	action, _, _ = strings.Cut(action, ":")
	switch {
	case action == "c":
		d.cb.Resume(nil)
		return nil // no immediate reply, same as the 'c' packet
	case action == "s":
		sig := d.cb.StepInstruction()
		d.SetLastStopSignal(sig)
		return one(d.stopReply(sig))
	case action == "t":
		d.SetLastStopSignal(debugger.SigINT)
		return one(d.stopReply(debugger.SigINT))
	default:
		return one("")
	}
}
