package proc

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// TerminationSignals are the catchable signals that ask the process to
// shut down. SIGKILL is not in the set; a holder killed with it is
// recovered through stale-lock detection instead.
var TerminationSignals = []os.Signal{
	unix.SIGHUP,
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTERM,
}

// SignalHold defers termination signals for the duration of a critical
// section. Deliveries are queued on a buffered channel instead of acting
// on the process, so the holder cannot die between creating its marker
// file and inspecting the link count. A queued signal is not lost: the
// owner services the channel once the window closes.
type SignalHold struct {
	ch chan os.Signal
}

// Hold starts deferring termination signals. Call it before entering the
// critical section and pair it with Cancel, or keep draining Signals for
// the life of the process.
func Hold() *SignalHold {
	h := &SignalHold{
		ch: make(chan os.Signal, len(TerminationSignals)),
	}
	signal.Notify(h.ch, TerminationSignals...)
	return h
}

// Signals exposes the deferred-delivery channel. After the critical
// section the owner reads from it, either forwarding to the wrapped
// command or treating a queued signal as a shutdown request.
func (h *SignalHold) Signals() <-chan os.Signal {
	return h.ch
}

// Pending returns a signal queued during the hold without blocking, or
// nil when none arrived.
func (h *SignalHold) Pending() os.Signal {
	select {
	case sig := <-h.ch:
		return sig
	default:
		return nil
	}
}

// Cancel restores the default disposition. Signals already queued remain
// readable from Signals; new deliveries act on the process directly.
func (h *SignalHold) Cancel() {
	signal.Stop(h.ch)
}
