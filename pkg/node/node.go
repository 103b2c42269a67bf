// Package node aggregates one cube's full stack — transceiver, data-link,
// network, and transport layers — into a single object with the
// application-facing Send/Receive API spec.md §2 calls "Application
// (external)" but does not itself define a shape for. Grounded on
// gocanopen's BaseNode/Node aggregation (node.go, node_local.go), scaled
// down to this stack's two operations.
package node

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/dll"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
	"github.com/jordanjohnson-usu/cuberadio/pkg/transport"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// Cube is one node on the radio network: a transceiver, framed into a
// data-link, routed through a network layer, carrying exactly one
// transport endpoint at its configured local port.
type Cube struct {
	cfg *Config
	t   trx.Transceiver
	net *netlayer.Layer
	clk clock.Clock
	log *logrus.Entry
	tp  *transport.Transport
}

// New brings up a cube from cfg, opening its transceiver backend (via the
// pkg/trx registry) and wiring dll/netlayer/transport on top of it, serving
// cfg.Port.
func New(cfg *Config, clk clock.Clock) (*Cube, error) {
	t, err := trx.New(cfg.TRXBackend, cfg.TRXChannel)
	if err != nil {
		return nil, err
	}
	return NewWithTransceiver(cfg, t, clk)
}

// NewWithTransceiver is New with an already-constructed transceiver,
// bypassing the pkg/trx registry. Production code should use New; this
// exists so tests can wire in a fake (internal/radiotest.Link) directly.
func NewWithTransceiver(cfg *Config, t trx.Transceiver, clk clock.Clock) (*Cube, error) {
	log := logrus.WithField("layer", "node").WithField("net_addr", cfg.NetAddr)

	dlAddr, ok := cfg.AddrTable.ResolveDLAddr(cfg.NetAddr)
	if !ok {
		return nil, netlayer.ErrUnresolvedAddr
	}
	if err := t.Init(dlAddr); err != nil {
		return nil, err
	}

	link := dll.New(t)
	netLayer := netlayer.New(link, cfg.NetAddr, cfg.RoutingTable, cfg.AddrTable.ResolveDLAddr)

	c := &Cube{
		cfg: cfg,
		t:   t,
		net: netLayer,
		clk: clk,
		log: log,
		tp:  transport.New(netLayer, cfg.NetAddr, cfg.Port, cfg.AddrTable.ResolveNetAddr, clk),
	}
	return c, nil
}

// LocalPort returns the application port this cube's transport endpoint
// serves.
func (c *Cube) LocalPort() uint8 {
	return c.cfg.Port
}

// Send transmits message to the cube reachable via destPort, blocking until
// delivery is acknowledged or the attempt limit is reached.
func (c *Cube) Send(message []byte, destPort uint8) error {
	return c.tp.Tx(message, destPort)
}

// Receive blocks until one message arrives or timeout elapses with the
// channel silent, returning the message and the sending port.
func (c *Cube) Receive(timeout time.Duration) (message []byte, sourcePort uint8, err error) {
	buf := make([]byte, 1<<16)
	n, src, err := c.tp.Rx(buf, timeout)
	if err != nil {
		return nil, 0, err
	}
	return buf[:n], src, nil
}
