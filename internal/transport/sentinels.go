package transport

// cmdKind distinguishes the special sentinels spec.md §4.7 prefixes with an
// out-of-band octal \001 in the source from ordinary decoded packet
// payloads. Go's type system lets the queue carry a typed sum instead of a
// string convention.
type cmdKind int

const (
	cmdPacket cmdKind = iota
	cmdConnect
	cmdDisconnect
	cmdInterrupt
)

type command struct {
	kind    cmdKind
	payload string
}

type respKind int

const (
	respPacket respKind = iota
	respContinue // "you are now in async execution, await a later stop reply"
	respNoReply  // no reply at all (e.g. after 'k')
)

type response struct {
	kind    respKind
	payload string
	// final marks the last response for a given request. Most dispatches
	// produce exactly one response with final set immediately; a qRcmd with
	// console output produces an "O<hex>" packet (final=false) followed by
	// the terminating "OK" (final=true), per gdbstub.handleQRcmd.
	final bool
}

// PollResult is the collapsed outcome of one driver poll cycle, per
// spec.md §4.7's driver-side polling table.
type PollResult int

const (
	PollNone PollResult = iota
	PollRESUMED
	PollSTEPPED
	PollDETACHED
	PollHALTED
	PollKILL
)

// pollPriority orders PollResult values so a poll cycle that produced
// several effects collapses to one. spec.md §4.7's prose is explicit —
// "KILL > HALTED > STEPPED > DETACHED > RESUMED > NONE" — and is treated as
// authoritative over the ambiguous literal prio[] array in
// original_source/src/gdb_stub.cpp.
var pollPriority = map[PollResult]int{
	PollNone:    0,
	PollRESUMED: 1,
	PollDETACHED: 2,
	PollSTEPPED: 3,
	PollHALTED:  4,
	PollKILL:    5,
}

func higherPriority(a, b PollResult) PollResult {
	if pollPriority[b] > pollPriority[a] {
		return b
	}
	return a
}
