// Package transport implements the TCP Transport of spec.md §4.7: a
// dedicated transport goroutine owns the listening and client sockets and
// the framer state; it mediates with the driver goroutine via two queues
// with explicit sentinels, grounded on
// original_source/src/gdb_stub.cpp's tcp_thread_func. The goroutine-join
// convention ("spawn and join" rather than "spawn and forget") is
// generalized with golang.org/x/sync/errgroup so Run can wait for clean
// teardown once its context is cancelled.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"n8machine/internal/gdbstub"
	"n8machine/internal/log"
	"n8machine/internal/machine"
)

const (
	acceptPoll  = 200 * time.Millisecond
	recvTimeout = 100 * time.Millisecond
	respTimeout = 500 * time.Millisecond
)

// Transport owns the listening socket, the per-client framer, and the two
// command/response queues that mediate with the driver goroutine.
type Transport struct {
	addr    string
	machine *machine.Machine
	disp    *gdbstub.Dispatcher

	cmdCh  chan command
	respCh chan response

	connected bool
}

// New wires a Dispatcher to m's Callbacks implementation and returns a
// Transport ready to Run.
func New(addr string, m *machine.Machine) *Transport {
	return &Transport{
		addr:    addr,
		machine: m,
		disp:    gdbstub.NewDispatcher(m),
		cmdCh:   make(chan command, 8),
		respCh:  make(chan response, 8),
	}
}

// Run binds the listener and runs the accept loop and driver loop until ctx
// is cancelled, joining both before returning. A bind/listen failure is
// logged and returned as nil so the caller (the emulator's main loop) is
// not torn down by a transport that failed to start, per spec.md §7.
func (t *Transport) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		log.ModTransport.Errorf("listen %s: %v", t.addr, err)
		return nil
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		tcpLn = nil
	}
	log.ModTransport.Infof("listening on %s", t.addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.driverLoop(gctx) })
	g.Go(func() error { return t.acceptLoop(gctx, ln, tcpLn) })

	<-gctx.Done()
	ln.Close()
	return g.Wait()
}

func (t *Transport) acceptLoop(ctx context.Context, ln net.Listener, tcpLn *net.TCPListener) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if tcpLn != nil {
			tcpLn.SetDeadline(time.Now().Add(acceptPoll))
		}
		conn, err := ln.Accept()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			log.ModTransport.Warnf("accept: %v", err)
			continue
		}
		t.cmdCh <- command{kind: cmdConnect}
		t.handleConn(ctx, conn)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// handleConn runs the per-client framing loop: each received byte is fed to
// a Framer whose DispatchFunc routes the decoded payload through the
// command/response queues instead of dispatching inline, so the driver
// goroutine remains the only caller of Dispatcher.Dispatch.
func (t *Transport) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	defer func() { t.cmdCh <- command{kind: cmdDisconnect} }()

	framer := gdbstub.NewFramer(t.disp)
	framer.DispatchFunc = func(payload string) []string {
		t.cmdCh <- command{kind: cmdPacket, payload: payload}
		return t.awaitResponses()
	}

	buf := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn.SetReadDeadline(time.Now().Add(recvTimeout))
		n, err := conn.Read(buf)
		if n > 0 {
			for _, b := range buf[:n] {
				if b == 0x03 {
					t.cmdCh <- command{kind: cmdInterrupt}
					continue
				}
				out := framer.FeedByte(b)
				if len(out) > 0 {
					if _, werr := conn.Write(out); werr != nil {
						return
					}
				}
			}
		}
		if err != nil {
			if isTimeout(err) {
				// Opportunistically drain an async stop reply that arrived
				// while we were blocked on the client, per spec.md §4.7
				// step 4.
				if out, ok := t.drainPendingReply(); ok {
					conn.Write(out)
				}
				continue
			}
			if err != io.EOF {
				log.ModTransport.Debugf("recv: %v", err)
			}
			return
		}
	}
}

// awaitResponses blocks (bounded by respTimeout) for the driver's reply to
// the packet just enqueued. A CONTINUE sentinel means no immediate reply —
// the client will get its stop-reply asynchronously; NOREPLY is the same
// for 'k'. A timeout emits an empty reply so the client is never left
// hanging indefinitely, logging a diagnostic per spec.md §5.
func (t *Transport) awaitResponses() []string {
	var out []string
	for {
		select {
		case r := <-t.respCh:
			switch r.kind {
			case respContinue, respNoReply:
				return nil
			default:
				out = append(out, r.payload)
				if r.final {
					return out
				}
			}
		case <-time.After(respTimeout):
			log.ModTransport.Warn("driver response timed out")
			return []string{""}
		}
	}
}

// drainPendingReply non-blockingly checks for an async stop reply queued by
// the driver during a free-run ('c'), framing it if present.
func (t *Transport) drainPendingReply() ([]byte, bool) {
	select {
	case r := <-t.respCh:
		if r.kind == respPacket {
			return []byte(gdbstub.FormatResponse(r.payload)), true
		}
		return nil, false
	default:
		return nil, false
	}
}
