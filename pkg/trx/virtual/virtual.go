// Package virtual implements a TCP-broker-backed trx.Transceiver, used to
// run multi-node cuberadio topologies (including forwarding scenarios)
// without real radio hardware. It is modeled directly on gocanopen's
// pkg/can/virtual TCP virtual CAN bus: a broker relays frames between
// connected clients; unlike the CAN bus (a broadcast medium where clients
// filter by ID) the broker here routes each frame to the single addressed
// recipient, matching trx_transmit_payload's point-to-point contract.
package virtual

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

func init() {
	trx.Register("virtual", New)
}

// wireFrame is what travels over the broker TCP connection: a 4-byte
// destination address header followed by the fixed-size radio payload.
type wireFrame struct {
	Dest    trx.Addr
	Payload trx.Payload
}

func serialize(f wireFrame) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, f.Dest)
	_ = binary.Write(buf, binary.BigEndian, f.Payload)
	return buf.Bytes()
}

func deserialize(raw []byte) (wireFrame, error) {
	var f wireFrame
	r := bytes.NewReader(raw)
	if err := binary.Read(r, binary.BigEndian, &f.Dest); err != nil {
		return wireFrame{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &f.Payload); err != nil {
		return wireFrame{}, err
	}
	return f, nil
}

const frameWireLen = 4 + trx.PayloadLength

// Bus is a trx.Transceiver backed by a TCP connection to a broker process.
// The broker is expected to relay every frame it receives to whichever
// connected client registered the frame's destination address.
type Bus struct {
	channel string
	logger  *logrus.Entry

	mu      sync.Mutex
	conn    net.Conn
	myAddr  trx.Addr
	inbox   chan trx.Payload
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
	clk     clock.Clock
}

// New creates a new virtual transceiver dialing the broker at channel
// (e.g. "localhost:18000"), timing its Receive out against the real wall
// clock. It matches trx.NewTransceiverFunc so it can be registered with
// pkg/trx's backend registry.
func New(channel string) (trx.Transceiver, error) {
	return NewWithClock(channel, clock.Real{})
}

// NewWithClock creates a new virtual transceiver whose Receive timeout is
// driven by clk instead of the real wall clock, for tests that need the
// broker-backed Bus to participate in a deterministically clocked scenario.
func NewWithClock(channel string, clk clock.Clock) (*Bus, error) {
	return &Bus{
		channel: channel,
		logger:  logrus.WithField("layer", "trx.virtual"),
		inbox:   make(chan trx.Payload, 64),
		stop:    make(chan struct{}),
		clk:     clk,
	}, nil
}

func (b *Bus) Init(myAddr trx.Addr) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.myAddr = myAddr
	conn, err := net.Dial("tcp", b.channel)
	if err != nil {
		return fmt.Errorf("trx/virtual: dial %s: %w", b.channel, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	// Register our address with the broker so it knows where to route
	// frames addressed to us.
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(myAddr))
	if _, err := conn.Write(header); err != nil {
		conn.Close()
		return fmt.Errorf("trx/virtual: register: %w", err)
	}
	b.conn = conn
	b.running = true
	b.wg.Add(1)
	go b.readLoop()
	return nil
}

func (b *Bus) readLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		default:
		}
		_ = b.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		raw := make([]byte, frameWireLen)
		n, err := readFull(b.conn, raw)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			b.logger.WithError(err).Debug("broker connection closed")
			return
		}
		frame, err := deserialize(raw[:n])
		if err != nil {
			continue
		}
		select {
		case b.inbox <- frame.Payload:
		default:
			b.logger.Warn("inbox full, dropping frame")
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *Bus) Transmit(addr trx.Addr, payload trx.Payload) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("%w: not connected", trx.ErrHardware)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(50 * time.Millisecond))
	_, err := conn.Write(serialize(wireFrame{Dest: addr, Payload: payload}))
	if err != nil {
		return fmt.Errorf("%w: %v", trx.ErrHardware, err)
	}
	return nil
}

func (b *Bus) Receive(timeout time.Duration) (trx.Payload, error) {
	if timeout == trx.Indefinite {
		p := <-b.inbox
		return p, nil
	}
	select {
	case p := <-b.inbox:
		return p, nil
	case <-b.clk.After(timeout):
		return trx.Payload{}, trx.ErrTimeout
	}
}

// Disconnect closes the broker connection. Not part of trx.Transceiver;
// only callers that own a *Bus directly (as opposed to through the
// interface) can use it for a graceful shutdown.
func (b *Bus) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return nil
	}
	close(b.stop)
	b.running = false
	conn := b.conn
	b.conn = nil
	b.wg.Wait()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
