// Package dll implements the data-link layer (spec.md §4.1): framing one
// network packet inside one fixed-length TRX payload. It does not
// interpret its payload and performs no retry; a timeout here is a normal,
// propagated outcome. Modeled on gocanopen's bus wrapper layer
// (bus_manager.go), which is likewise a thin, non-interpreting pass-through
// over the raw Bus.
package dll

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// HeaderLen is the one-byte frame length header (spec.md §6).
const HeaderLen = 1

// MaxPayloadLen is the most packet bytes one frame can carry.
const MaxPayloadLen = trx.PayloadLength - HeaderLen // 31

// Link wraps a trx.Transceiver with the data-link framing contract.
type Link struct {
	t      trx.Transceiver
	logger *logrus.Entry
}

// New builds a Link over the given transceiver.
func New(t trx.Transceiver) *Link {
	return &Link{t: t, logger: logrus.WithField("layer", "dll")}
}

// Tx builds a zero-padded, length-prefixed frame carrying payload and
// hands it to the transceiver addressed at dlAddr. frame[0] is defined as
// len(payload) — the payload byte count, not +1 — per this module's
// resolution of spec.md's frame-length-byte open question (SPEC_FULL.md
// §0). It is informational only: the network layer's own length byte is
// authoritative on receive.
func (l *Link) Tx(payload []byte, dlAddr trx.Addr) error {
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("dll: payload of %d bytes exceeds max %d", len(payload), MaxPayloadLen)
	}
	var frame trx.Payload
	frame[0] = byte(len(payload))
	copy(frame[HeaderLen:], payload)
	if err := l.t.Transmit(dlAddr, frame); err != nil {
		l.logger.WithError(err).Debug("frame transmit failed")
		return err
	}
	return nil
}

// Rx blocks up to timeout for one frame and copies min(len(buf),
// TRX_PAYLOAD_LENGTH-1) bytes of the frame body into buf, per spec.md
// §4.1. It returns the number of bytes copied.
func (l *Link) Rx(buf []byte, timeout time.Duration) (int, error) {
	frame, err := l.t.Receive(timeout)
	if err != nil {
		return 0, err
	}
	n := len(buf)
	if n > MaxPayloadLen {
		n = MaxPayloadLen
	}
	copy(buf[:n], frame[HeaderLen:HeaderLen+n])
	return n, nil
}
