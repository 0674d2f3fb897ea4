package gdbstub

import "errors"

// errMalformed signals a hex-parsing failure; dispatcher handlers translate
// it into the E03 wire error, never a Go-level panic or crash.
var errMalformed = errors.New("gdbstub: malformed packet")

// Wire error payloads, per spec.md §4.5's error taxonomy.
const (
	errRange     = "E01" // range/overflow or missing callback
	errBadReg    = "E02" // invalid register index
	errMalformedWire = "E03" // malformed: bad delimiter, wrong length, non-hex
)
