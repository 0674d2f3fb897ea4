package gdbstub

import "n8machine/internal/log"

type framerState int

const (
	stateIdle framerState = iota
	statePacketData
	stateChecksumHi
	stateChecksumLo
)

// Framer is the byte-at-a-time RSP framing state machine of spec.md §4.4.
// It owns no emulator state; it is fed bytes by the transport and emits
// zero or more outbound bytes plus, on a complete valid packet, the
// dispatcher's response(s) already framed and ready to write.
type Framer struct {
	state       framerState
	payload     []byte
	checksum    uint8
	recvCksum   uint8
	escapeNext  bool

	Dispatcher *Dispatcher

	// DispatchFunc resolves a complete, checksum-valid payload to the
	// response payload(s) to send. It defaults to Dispatcher.Dispatch
	// (synchronous, same-thread dispatch — the "Phase 1" mode original_
	// source's testing API exercises). internal/transport overrides this
	// in production to hand the payload to the driver thread via the
	// command queue and block for the driver's reply instead, without
	// duplicating the framing state machine.
	DispatchFunc func(payload string) []string

	// InterruptRequested is a one-shot flag set by the 0x03 (Ctrl-C) byte.
	InterruptRequested bool
}

func NewFramer(d *Dispatcher) *Framer {
	f := &Framer{Dispatcher: d}
	f.DispatchFunc = d.Dispatch
	return f
}

// FeedByte consumes one incoming byte and returns the bytes to write back
// to the client, if any (an ACK/NAK byte, a framed response, or both).
func (f *Framer) FeedByte(b byte) []byte {
	switch f.state {
	case stateIdle:
		return f.feedIdle(b)
	case statePacketData:
		return f.feedPacketData(b)
	case stateChecksumHi:
		return f.feedChecksumHi(b)
	case stateChecksumLo:
		return f.feedChecksumLo(b)
	}
	return nil
}

func (f *Framer) feedIdle(b byte) []byte {
	switch b {
	case '$':
		f.payload = f.payload[:0]
		f.checksum = 0
		f.escapeNext = false
		f.state = statePacketData
	case 0x03:
		f.InterruptRequested = true
		if f.Dispatcher != nil {
			f.Dispatcher.SetLastStopSignal(2)
		}
	}
	return nil
}

func (f *Framer) feedPacketData(b byte) []byte {
	switch {
	case b == '$':
		f.payload = f.payload[:0]
		f.checksum = 0
		f.escapeNext = false
		return nil
	case b == '#':
		f.state = stateChecksumHi
		return nil
	case b == '}':
		f.checksum += b
		f.escapeNext = true
		return nil
	default:
		f.checksum += b
		if f.escapeNext {
			f.payload = append(f.payload, b^0x20)
			f.escapeNext = false
		} else {
			f.payload = append(f.payload, b)
		}
		return nil
	}
}

func (f *Framer) feedChecksumHi(b byte) []byte {
	d := hexCharVal(b)
	if d < 0 {
		f.state = stateIdle
		return f.nakIfAcking()
	}
	f.recvCksum = uint8(d) << 4
	f.state = stateChecksumLo
	return nil
}

func (f *Framer) feedChecksumLo(b byte) []byte {
	d := hexCharVal(b)
	f.state = stateIdle
	if d < 0 {
		return f.nakIfAcking()
	}
	f.recvCksum |= uint8(d)
	if f.recvCksum != f.checksum {
		return f.nakIfAcking()
	}

	var out []byte
	if !f.Dispatcher.NoAck {
		out = append(out, '+')
	}
	for _, resp := range f.DispatchFunc(string(f.payload)) {
		out = append(out, []byte(formatResponse(resp))...)
	}
	return out
}

func (f *Framer) nakIfAcking() []byte {
	if f.Dispatcher.NoAck {
		return nil
	}
	log.ModGDBStub.Debug("bad checksum, sending NAK")
	return []byte{'-'}
}
