package transport

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// Transmitter is one endpoint's send side: stop-and-wait with a 1-bit
// sequence number, retransmission on loss, and a hard attempt limit
// (spec.md §4.4). Not safe for concurrent use.
type Transmitter struct {
	net        *netlayer.Layer
	clk        clock.Clock
	myNetAddr  netlayer.Addr
	myPort     uint8
	resolveNet func(port uint8) (netlayer.Addr, bool)
	logger     *logrus.Entry

	currentSeq uint8
}

// NewTransmitter builds a Transmitter for the endpoint at myPort/myNetAddr.
func NewTransmitter(net *netlayer.Layer, myNetAddr netlayer.Addr, myPort uint8, resolveNet func(port uint8) (netlayer.Addr, bool), clk clock.Clock) *Transmitter {
	return &Transmitter{
		net:        net,
		clk:        clk,
		myNetAddr:  myNetAddr,
		myPort:     myPort,
		resolveNet: resolveNet,
		logger:     logrus.WithField("layer", "transport.tx"),
	}
}

// attemptTx implements spec.md §4.4's per-segment procedure: send the
// segment (a net_tx failure here is not fatal — only the ACK decides
// success), then wait for an ACK up to AckTimeout and classify it.
func (t *Transmitter) attemptTx(seg []byte, destPort uint8) (txOutcome, error) {
	destNet, ok := t.resolveNet(destPort)
	if !ok {
		return 0, ErrUnknownPort
	}

	if err := t.net.Tx(seg, destNet, t.myNetAddr); err != nil {
		t.logger.WithError(err).Debug("segment transmit failed, waiting for ack anyway")
	}

	var ackBuf [netlayer.MaxSegmentLen]byte
	n, err := t.net.Rx(ackBuf[:], AckTimeout)
	if err != nil {
		if errors.Is(err, trx.ErrTimeout) {
			return txNotAcknowledged, nil
		}
		return 0, err // unrecoverable
	}

	ack, err := decodeSegment(ackBuf[:n])
	if err != nil || ack.id() != idACK || ack.destPort() != t.myPort {
		return txNotAnAck, nil
	}
	switch {
	case ack.seq() == t.currentSeq:
		return txOldAck, nil
	case ack.seq() == t.currentSeq^1:
		return txSuccess, nil
	default:
		return txNotAnAck, nil
	}
}

// keepTrying retries attemptTx up to AttemptLimit times, waiting
// RetryDelay between attempts, per spec.md §4.4's keep-trying wrapper.
func (t *Transmitter) keepTrying(seg []byte, destPort uint8) error {
	for attempt := 0; attempt < AttemptLimit; attempt++ {
		outcome, err := t.attemptTx(seg, destPort)
		if err != nil {
			return err
		}
		if outcome == txSuccess {
			return nil
		}
		t.clk.Sleep(RetryDelay)
	}
	return ErrReachedAttemptLimit
}

// Tx implements spec.md §4.4's message-level procedure: segment message
// into SOM, zero or more DATA segments, and EOM, sending each with
// stop-and-wait reliability and pacing SEGMENT_SPACING between them.
func (t *Transmitter) Tx(message []byte, destPort uint8) error {
	t.currentSeq = 0
	messageLen := len(message)

	var buf [MaxSegmentLen]byte
	som := encodeSOM(buf[:], t.currentSeq, destPort, t.myPort, uint16(messageLen))
	if err := t.keepTrying(som, destPort); err != nil {
		return err
	}
	t.currentSeq ^= 1
	t.clk.Sleep(SegmentSpacing)

	remaining := messageLen
	for remaining > 0 {
		n := remaining
		if n > MaxPayloadLen {
			n = MaxPayloadLen
		}
		offset := messageLen - remaining
		data := encodeDATA(buf[:], t.currentSeq, destPort, t.myPort, uint16(offset), message[offset:offset+n])
		if err := t.keepTrying(data, destPort); err != nil {
			return err
		}
		t.currentSeq ^= 1
		remaining -= n
		t.clk.Sleep(SegmentSpacing)
	}

	eom := encodeEOM(buf[:], t.currentSeq, destPort, t.myPort)
	if err := t.keepTrying(eom, destPort); err != nil {
		return err
	}
	t.currentSeq ^= 1
	return nil
}
