package transport

import (
	"time"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
)

// Transport bundles a Receiver and Transmitter for one local port over a
// shared network layer, the application-facing entry point of spec.md §6.
type Transport struct {
	rx *Receiver
	tx *Transmitter
}

// New builds a Transport for myPort at myNetAddr, resolving a remote port's
// network address via resolveNet for both outgoing sends and ACKs.
func New(net *netlayer.Layer, myNetAddr netlayer.Addr, myPort uint8, resolveNet func(port uint8) (netlayer.Addr, bool), clk clock.Clock) *Transport {
	return &Transport{
		rx: NewReceiver(net, myNetAddr, myPort, resolveNet, clk),
		tx: NewTransmitter(net, myNetAddr, myPort, resolveNet, clk),
	}
}

// Tx sends message to destPort, blocking until delivery is acknowledged or
// ErrReachedAttemptLimit is returned.
func (t *Transport) Tx(message []byte, destPort uint8) error {
	return t.tx.Tx(message, destPort)
}

// Rx blocks until one complete message arrives or timeout elapses with no
// segment received, returning the message length, the sending port, and
// any trx-level error (trx.ErrTimeout or trx.ErrHardware).
func (t *Transport) Rx(buf []byte, timeout time.Duration) (messageLen uint16, sourcePort uint8, err error) {
	return t.rx.Rx(buf, timeout)
}
