package transport

import (
	"fmt"

	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
)

// Segment identifiers (spec.md §3).
const (
	idSOM  byte = 0x07
	idDATA byte = 0x0D
	idEOM  byte = 0x09
	idACK  byte = 0x0A
)

// Header lengths per segment kind (spec.md §3/§6).
const (
	somHeaderLen  = 7
	dataHeaderLen = 7
	eomHeaderLen  = 5
	ackHeaderLen  = 5
)

// MaxSegmentLen is the largest segment this layer will build (spec.md §6).
const MaxSegmentLen = netlayer.MaxSegmentLen // 28

// MaxPayloadLen is the most message bytes one DATA segment can carry.
const MaxPayloadLen = MaxSegmentLen - dataHeaderLen // 21

// decodeUint16BE reads the big-endian 16-bit length/offset field at
// offset 5..6 of a segment. spec.md's Design Notes flag that the original
// C source reads this as `b[5] << 8 + b[6]`, which due to operator
// precedence is actually `b[5] << (8 + b[6])` — a bug. This helper is the
// single parenthesized implementation every encoder and decoder in this
// package goes through, so that bug has nowhere to reappear.
func decodeUint16BE(hi, lo byte) uint16 {
	return (uint16(hi) << 8) | uint16(lo)
}

func encodeUint16BE(buf []byte, v uint16) {
	buf[0] = byte(v >> 8)
	buf[1] = byte(v)
}

// segment is a decoded view over a received transport PDU's raw bytes, in
// the same spirit as gocanopen's SDOResponse: a fixed backing array with
// accessor methods reading fixed offsets, no heap allocation per access.
type segment struct {
	raw [MaxSegmentLen]byte
	n   int
}

func decodeSegment(raw []byte) (segment, error) {
	if len(raw) < ackHeaderLen {
		return segment{}, fmt.Errorf("transport: segment too short (%d bytes)", len(raw))
	}
	var s segment
	n := int(raw[0])
	if n < ackHeaderLen || n > len(raw) {
		return segment{}, fmt.Errorf("transport: inconsistent segment length byte %d for %d received bytes", n, len(raw))
	}
	switch raw[4] {
	case idSOM:
		if n != somHeaderLen {
			return segment{}, fmt.Errorf("transport: SOM with wrong length %d", n)
		}
	case idEOM:
		if n != eomHeaderLen {
			return segment{}, fmt.Errorf("transport: EOM with wrong length %d", n)
		}
	case idACK:
		if n != ackHeaderLen {
			return segment{}, fmt.Errorf("transport: ACK with wrong length %d", n)
		}
	case idDATA:
		if n < dataHeaderLen {
			return segment{}, fmt.Errorf("transport: DATA with wrong length %d", n)
		}
	default:
		return segment{}, fmt.Errorf("transport: unknown segment id 0x%02X", raw[4])
	}
	copy(s.raw[:n], raw[:n])
	s.n = n
	return s, nil
}

func (s segment) length() uint8     { return s.raw[0] }
func (s segment) seq() uint8        { return s.raw[1] }
func (s segment) destPort() uint8   { return s.raw[2] }
func (s segment) srcPort() uint8    { return s.raw[3] }
func (s segment) id() byte          { return s.raw[4] }
func (s segment) lenOrOffset() uint16 { return decodeUint16BE(s.raw[5], s.raw[6]) }
func (s segment) payload() []byte   { return s.raw[dataHeaderLen:s.n] }

func encodeSOM(buf []byte, seq, destPort, srcPort uint8, messageLen uint16) []byte {
	buf[0] = somHeaderLen
	buf[1] = seq
	buf[2] = destPort
	buf[3] = srcPort
	buf[4] = idSOM
	encodeUint16BE(buf[5:7], messageLen)
	return buf[:somHeaderLen]
}

func encodeDATA(buf []byte, seq, destPort, srcPort uint8, offset uint16, payload []byte) []byte {
	total := dataHeaderLen + len(payload)
	buf[0] = byte(total)
	buf[1] = seq
	buf[2] = destPort
	buf[3] = srcPort
	buf[4] = idDATA
	encodeUint16BE(buf[5:7], offset)
	copy(buf[dataHeaderLen:total], payload)
	return buf[:total]
}

func encodeEOM(buf []byte, seq, destPort, srcPort uint8) []byte {
	buf[0] = eomHeaderLen
	buf[1] = seq
	buf[2] = destPort
	buf[3] = srcPort
	buf[4] = idEOM
	return buf[:eomHeaderLen]
}

func encodeACK(buf []byte, seq, destPort, srcPort uint8) []byte {
	buf[0] = ackHeaderLen
	buf[1] = seq
	buf[2] = destPort
	buf[3] = srcPort
	buf[4] = idACK
	return buf[:ackHeaderLen]
}
