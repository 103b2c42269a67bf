package transport

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
)

// receiverState is the two-state machine of spec.md §4.3.
type receiverState uint8

const (
	stateIdle receiverState = iota
	stateReceiving
)

// Receiver is one endpoint's receive side: a two-state machine plus a
// persistent 1-bit expected sequence number (spec.md §4.3). It is not
// safe for concurrent use by multiple goroutines, matching the
// single-threaded, cooperative model of spec.md §5.
type Receiver struct {
	net         *netlayer.Layer
	clk         clock.Clock
	myNetAddr   netlayer.Addr
	myPort      uint8
	resolveNet  func(port uint8) (netlayer.Addr, bool)
	logger      *logrus.Entry

	expectedSeq uint8
	state       receiverState
}

// NewReceiver builds a Receiver for the endpoint at myPort/myNetAddr,
// sending ACKs over net and resolving an ACK's destination network
// address from the originating segment's source port via resolveNet
// (spec.md §4.5).
func NewReceiver(net *netlayer.Layer, myNetAddr netlayer.Addr, myPort uint8, resolveNet func(port uint8) (netlayer.Addr, bool), clk clock.Clock) *Receiver {
	return &Receiver{
		net:        net,
		clk:        clk,
		myNetAddr:  myNetAddr,
		myPort:     myPort,
		resolveNet: resolveNet,
		logger:     logrus.WithField("layer", "transport.rx"),
	}
}

// attemptRx implements spec.md §4.3's per-segment procedure. The returned
// error, when non-nil, is always either trx.ErrTimeout or trx.ErrHardware:
// anything else (a malformed segment) is reported as a transient
// "decoded nothing usable" outcome the caller retries, never as an error.
func (r *Receiver) attemptRx(timeout time.Duration) (segment, rxOutcome, error) {
	var pktBuf [netlayer.MaxSegmentLen]byte
	n, err := r.net.Rx(pktBuf[:], timeout)
	if err != nil {
		return segment{}, 0, err
	}

	seg, err := decodeSegment(pktBuf[:n])
	if err != nil {
		r.logger.WithError(err).Debug("discarding malformed segment")
		return segment{}, rxMalformed, nil // transient: retry, no error surfaced
	}

	if seg.destPort() != r.myPort {
		// Addressed to a different local port at this same network
		// address: not ours to ack or reassemble, and must never touch
		// expectedSeq. Left alone, same as noise on the channel.
		r.logger.WithField("dest_port", seg.destPort()).Debug("discarding segment for a different port")
		return segment{}, rxForeignPort, nil
	}

	if seg.id() == idSOM {
		// Resynchronize: a fresh sender, or one that has restarted,
		// always gets to set the expected sequence number.
		r.expectedSeq = seg.seq()
	}

	r.clk.Sleep(AckDelay)
	ackSeq := seg.seq() ^ 1
	if destNet, ok := r.resolveNet(seg.srcPort()); ok {
		var ackBuf [ackHeaderLen]byte
		ack := encodeACK(ackBuf[:], ackSeq, seg.srcPort(), r.myPort)
		if err := r.net.Tx(ack, destNet, r.myNetAddr); err != nil {
			r.logger.WithError(err).Debug("ack transmit failed, peer will retry")
		}
	} else {
		r.logger.WithField("port", seg.srcPort()).Warn("cannot ack, unknown source port")
	}

	if seg.seq() != r.expectedSeq {
		return seg, rxOutdated, nil
	}
	r.expectedSeq ^= 1
	return seg, rxSuccess, nil
}

// Rx implements spec.md §4.3's message-level procedure: reassemble one
// message into buf (zeroed first), returning its length and the sending
// port. timeout bounds each individual segment receive, not the whole
// call — a peer that keeps talking, however slowly, is never cut off
// mid-message; only a genuine silence longer than timeout ends the call.
func (r *Receiver) Rx(buf []byte, timeout time.Duration) (messageLen uint16, sourcePort uint8, err error) {
	for i := range buf {
		buf[i] = 0
	}
	r.state = stateIdle

	for {
		seg, outcome, aerr := r.attemptRx(timeout)
		if aerr != nil {
			// Whether trx.ErrTimeout or trx.ErrHardware, both are
			// surfaced to the caller unchanged (spec.md §7).
			return 0, 0, aerr
		}
		if outcome == rxMalformed || outcome == rxOutdated || outcome == rxForeignPort {
			continue // malformed/foreign: retry silently. outdated: already re-ACKed in attemptRx.
		}

		switch r.state {
		case stateIdle:
			if seg.id() != idSOM {
				continue
			}
			sourcePort = seg.srcPort()
			messageLen = seg.lenOrOffset()
			r.state = stateReceiving

		case stateReceiving:
			switch seg.id() {
			case idDATA:
				offset := int(seg.lenOrOffset())
				payload := seg.payload()
				if offset >= len(buf) {
					continue
				}
				end := offset + len(payload)
				if end > len(buf) {
					end = len(buf)
				}
				copy(buf[offset:end], payload[:end-offset])
			case idEOM:
				return messageLen, sourcePort, nil
			case idSOM:
				// Peer restarted the message mid-transfer: resync and
				// keep reassembling (spec.md scenario S6).
				sourcePort = seg.srcPort()
				messageLen = seg.lenOrOffset()
			case idACK:
				// Stray ACK from a prior conversation: ignore.
			}
		}
	}
}
