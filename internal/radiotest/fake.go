// Package radiotest provides a deterministic fake trx.Transceiver for unit
// tests of dll, netlayer and transport: one that can drop or duplicate
// frames on demand. It does not reorder frames: each Link receives the
// frames addressed to it in the order they were transmitted.
package radiotest

import (
	"sync"
	"time"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// addressedPayload is what actually moves between two Fake links: the
// payload plus who it was addressed to, so a Link only delivers frames
// sent to its own address (trx is point-to-point, see pkg/trx/virtual).
type addressedPayload struct {
	dest    trx.Addr
	payload trx.Payload
}

// Medium is a shared in-memory radio medium. Multiple Links attached to
// the same Medium can exchange frames; Medium is where drop/duplicate
// behavior is configured so a test can model one lossy hop.
type Medium struct {
	mu      sync.Mutex
	links   map[trx.Addr]*Link
	dropN   map[trx.Addr]int // next N transmits to this dest are dropped
	dupeN   map[trx.Addr]int // next N transmits to this dest are duplicated
	clk     clock.Clock
}

// NewMedium creates an empty shared medium whose Links time out against the
// real wall clock.
func NewMedium() *Medium {
	return NewMediumWithClock(clock.Real{})
}

// NewMediumWithClock creates an empty shared medium whose Links' Receive
// timeouts are driven by clk instead of the real wall clock, so a test
// wiring the same clk into the transport layer above it gets the documented
// guarantee that no timeout in the stack ever really blocks.
func NewMediumWithClock(clk clock.Clock) *Medium {
	return &Medium{
		links: make(map[trx.Addr]*Link),
		dropN: make(map[trx.Addr]int),
		dupeN: make(map[trx.Addr]int),
		clk:   clk,
	}
}

// DropNext arranges for the next n frames addressed to dest to be silently
// discarded by the medium, modeling a lossy link (used for spec.md
// scenario S3, dropped ACKs).
func (m *Medium) DropNext(dest trx.Addr, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropN[dest] = n
}

// DuplicateNext arranges for the next n frames addressed to dest to be
// delivered twice.
func (m *Medium) DuplicateNext(dest trx.Addr, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dupeN[dest] = n
}

func (m *Medium) deliver(dest trx.Addr, payload trx.Payload) {
	m.mu.Lock()
	if m.dropN[dest] > 0 {
		m.dropN[dest]--
		m.mu.Unlock()
		return
	}
	dupes := 1
	if m.dupeN[dest] > 0 {
		m.dupeN[dest]--
		dupes = 2
	}
	link := m.links[dest]
	m.mu.Unlock()
	if link == nil {
		return // no node at this address, like a radio out of range
	}
	for i := 0; i < dupes; i++ {
		link.push(addressedPayload{dest: dest, payload: payload})
	}
}

// NewLink attaches a new fake Transceiver at addr to the medium.
func (m *Medium) NewLink(addr trx.Addr) *Link {
	l := &Link{
		medium: m,
		addr:   addr,
		inbox:  make(chan addressedPayload, 64),
	}
	m.mu.Lock()
	m.links[addr] = l
	m.mu.Unlock()
	return l
}

// Link is one node's fake Transceiver attached to a Medium.
type Link struct {
	medium *Medium
	addr   trx.Addr
	inbox  chan addressedPayload
}

func (l *Link) push(ap addressedPayload) {
	select {
	case l.inbox <- ap:
	default:
		// inbox full: drop, same as a radio receive buffer overrun
	}
}

func (l *Link) Init(myAddr trx.Addr) error {
	l.addr = myAddr
	return nil
}

func (l *Link) Transmit(addr trx.Addr, payload trx.Payload) error {
	l.medium.deliver(addr, payload)
	return nil
}

func (l *Link) Receive(timeout time.Duration) (trx.Payload, error) {
	if timeout == trx.Indefinite {
		ap := <-l.inbox
		return ap.payload, nil
	}
	select {
	case ap := <-l.inbox:
		return ap.payload, nil
	case <-l.medium.clk.After(timeout):
		return trx.Payload{}, trx.ErrTimeout
	}
}

var _ trx.Transceiver = (*Link)(nil)
