// Package netlayer implements the network layer (spec.md §4.2): a 3-byte
// (len, dest, src) header over the data-link layer, hop-by-hop forwarding
// on behalf of peers via a static next-hop table, and delivery upward only
// of packets addressed to this node. Modeled on gocanopen's node-level
// message routing (pkg/network.Network), generalized from "deliver to the
// right local SDO/NMT/PDO handler" to "deliver to me, or forward".
package netlayer

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/dll"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// MaxPacketLen is the largest packet this layer will build or forward
// (spec.md §6).
const MaxPacketLen = dll.MaxPayloadLen // 31

// MaxSegmentLen is the most transport-layer bytes one packet can carry.
const MaxSegmentLen = MaxPacketLen - HeaderLen // 28

// ErrNoRoute is returned by Tx when the destination is not in the
// configured routing table (SPEC_FULL.md's resolution of the next_hop
// open question).
var ErrNoRoute = errors.New("netlayer: no route to destination")

// ErrUnresolvedAddr is returned by Tx when the next hop has no known
// data-link address.
var ErrUnresolvedAddr = errors.New("netlayer: next hop has no data-link address")

// ResolveDLAddrFunc maps a network address to a data-link address
// (spec.md §4.5's resolve_dl_addr).
type ResolveDLAddrFunc func(net Addr) (trx.Addr, bool)

// Layer is the network layer for one node.
type Layer struct {
	link      *dll.Link
	myAddr    Addr
	routes    *RoutingTable
	resolveDL ResolveDLAddrFunc
	logger    *logrus.Entry
}

// New builds a network layer over link for the node at myAddr, using
// routes to pick a next hop for any destination and resolveDL to turn
// that next hop into a data-link address.
func New(link *dll.Link, myAddr Addr, routes *RoutingTable, resolveDL ResolveDLAddrFunc) *Layer {
	return &Layer{
		link:      link,
		myAddr:    myAddr,
		routes:    routes,
		resolveDL: resolveDL,
		logger:    logrus.WithField("layer", "net"),
	}
}

// Tx constructs a packet carrying payload addressed from src to dest,
// resolves dest's next hop to a data-link address, and transmits it
// (spec.md §4.2).
func (n *Layer) Tx(payload []byte, dest, src Addr) error {
	if HeaderLen+len(payload) > MaxPacketLen {
		return fmt.Errorf("netlayer: payload of %d bytes exceeds max %d", len(payload), MaxSegmentLen)
	}
	var buf [MaxPacketLen]byte
	pkt := encodePacket(buf[:], dest, src, payload)
	return n.txPacket(pkt, dest)
}

// txPacket sends an already-encoded packet (preserving dest/src exactly,
// as required when forwarding) toward dest's next hop.
func (n *Layer) txPacket(pkt []byte, dest Addr) error {
	nextHop, ok := n.routes.NextHop(dest)
	if !ok {
		return ErrNoRoute
	}
	dlAddr, ok := n.resolveDL(nextHop)
	if !ok {
		return ErrUnresolvedAddr
	}
	return n.link.Tx(pkt, dlAddr)
}

// Rx blocks up to timeout for a packet addressed to this node. Any packet
// received in the meantime whose destination is not this node is
// immediately re-forwarded with a byte-identical (dest, src) header and
// the receive resumes (spec.md §4.2's forwarding algorithm); a forwarding
// transmit failure is swallowed so it never looks like a local receive
// error to the caller.
func (n *Layer) Rx(buf []byte, timeout time.Duration) (int, error) {
	var frame [MaxPacketLen]byte
	for {
		fn, err := n.link.Rx(frame[:], timeout)
		if err != nil {
			return 0, err
		}
		pkt, err := decodePacket(frame[:fn])
		if err != nil {
			// Malformed frame: noise on the channel, not a local fault.
			// Keep listening within the same caller-supplied timeout.
			n.logger.WithError(err).Debug("discarding malformed frame")
			continue
		}
		if pkt.dest() == n.myAddr {
			segment := pkt.segment()
			nCopy := len(buf)
			if nCopy > len(segment) {
				nCopy = len(segment)
			}
			copy(buf[:nCopy], segment[:nCopy])
			return nCopy, nil
		}
		if err := n.txPacket(pkt.raw, pkt.dest()); err != nil {
			n.logger.WithError(err).
				WithField("dest", pkt.dest()).
				Debug("forwarding failed, dropping")
		}
	}
}
