package transport

import (
	"context"

	"n8machine/internal/debugger"
	"n8machine/internal/log"
)

// runBurst is how many bus ticks the driver advances per poll cycle while
// free-running, before yielding to check the command queue again. It bounds
// the latency of responding to an incoming Ctrl-C or a new connection.
const runBurst = 4096

// driverLoop is the single goroutine that owns all emulator state: it is
// the only caller of Dispatcher.Dispatch and the only ticker of the
// machine, per spec.md §4.7's two-thread model. It drains cmdCh, free-runs
// the machine when told to, and reports stop reasons on respCh.
func (t *Transport) driverLoop(ctx context.Context) error {
	for {
		if t.connected && t.machine.Running() {
			result := t.pollRunning(ctx)
			if result == PollKILL {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case cmd := <-t.cmdCh:
			if t.handleCommand(cmd) == PollKILL {
				return nil
			}
		}
	}
}

// pollRunning advances the machine in bursts while free-running, draining
// any queued commands (notably INTERRUPT) between bursts and collapsing
// whatever happened during the burst to a single PollResult via
// higherPriority, per spec.md §4.7.
func (t *Transport) pollRunning(ctx context.Context) PollResult {
	result := PollNone

	for i := 0; i < runBurst && t.machine.Running(); i++ {
		select {
		case <-ctx.Done():
			return PollKILL
		case cmd := <-t.cmdCh:
			result = higherPriority(result, t.handleCommand(cmd))
			if result == PollKILL || result == PollDETACHED {
				return result
			}
			continue
		default:
		}

		t.machine.Tick()
		if sig, addr, kind, stopped := t.machine.CheckAndConsumeStop(); stopped {
			t.machine.SetRunning(false)
			t.disp.SetLastStopSignal(sig)
			t.respCh <- response{kind: respPacket, payload: t.disp.StopReplyPacket(sig, addr, kind), final: true}
			return higherPriority(result, PollHALTED)
		}
	}
	return result
}

// handleCommand processes one command-queue item. It is called both from
// the idle (not running) branch of driverLoop and mid-burst from
// pollRunning, which drains every queued command kind (notably INTERRUPT).
func (t *Transport) handleCommand(cmd command) PollResult {
	switch cmd.kind {
	case cmdConnect:
		t.connected = true
		t.disp.NoAck = false
		t.disp.SetLastStopSignal(debugger.SigTRAP)
		log.ModTransport.Info("client connected")
		return PollHALTED

	case cmdDisconnect:
		t.connected = false
		t.machine.SetRunning(false)
		t.machine.Debug.ClearAllBreakpoints()
		log.ModTransport.Info("client disconnected")
		return PollDETACHED

	case cmdInterrupt:
		if t.machine.Running() {
			t.machine.SetRunning(false)
			t.disp.SetLastStopSignal(debugger.SigINT)
			t.respCh <- response{kind: respPacket, payload: t.disp.StopReplyPacket(debugger.SigINT, 0, 0), final: true}
		}
		return PollHALTED

	case cmdPacket:
		return t.dispatchPacket(cmd.payload)
	}
	return PollNone
}

// dispatchPacket is the only call site of Dispatcher.Dispatch: it runs on
// the driver goroutine, so every Callbacks method it invokes touches
// Machine state without any cross-goroutine race.
func (t *Transport) dispatchPacket(payload string) PollResult {
	if payload == "k" {
		t.disp.Dispatch(payload)
		t.respCh <- response{kind: respNoReply, final: true}
		return PollKILL
	}

	replies := t.disp.Dispatch(payload)
	if replies == nil {
		// Only 'c' and 'vCont;c' get here: a resume has no stop reply yet;
		// pollRunning delivers it later. ('s' replies synchronously and
		// takes the loop below.)
		t.respCh <- response{kind: respContinue, final: true}
		if t.machine.Running() {
			return PollRESUMED
		}
		return PollNone
	}

	for i, r := range replies {
		t.respCh <- response{kind: respPacket, payload: r, final: i == len(replies)-1}
	}
	return PollSTEPPED
}
