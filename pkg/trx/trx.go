// Package trx defines the transceiver contract the rest of the stack is
// built on: an addressed, fixed-length-payload radio with a blocking, timed
// receive. The physical radio driver is out of scope for this module
// (spec.md §1); trx only fixes the interface every layer above it codes
// against, the way gocanopen's pkg/can fixes the Bus interface CANopen is
// built on.
package trx

import (
	"errors"
	"time"
)

// PayloadLength is the fixed size of one radio payload (spec.md §6).
const PayloadLength = 32

// ErrTimeout is returned by Receive when no frame arrives within the
// caller's timeout. It is a normal, propagated outcome, not a failure.
var ErrTimeout = errors.New("trx: receive timed out")

// ErrHardware is returned when the underlying radio reports an
// unrecoverable failure (the TRX contract's Failure outcome). Unlike
// ErrTimeout this always indicates something is actually wrong with the
// link. A Receive failure is surfaced all the way up to the application; a
// Transmit failure is logged and swallowed by the transport layer, whose
// ACK handling alone decides whether a segment got through.
var ErrHardware = errors.New("trx: hardware failure")

// Addr is a data-link (radio) address. spec.md models it as 4 bytes; Go
// represents it as a uint32 to match trx_init(my_dl_addr uint32).
type Addr uint32

// Payload is one fixed-size radio frame.
type Payload [PayloadLength]byte

// Transceiver is the contract required from the platform (spec.md §6):
// addressed transmit and timed, blocking receive of fixed-length payloads.
// Implementations must not allocate per call where avoidable and must
// return ErrTimeout (never a generic error) when the timeout elapses.
type Transceiver interface {
	// Init configures the transceiver's own address. Implementations that
	// do not need explicit initialization may make this a no-op.
	Init(myAddr Addr) error

	// Transmit sends one fixed-length payload to addr. Returns ErrHardware
	// on an unrecoverable send failure.
	Transmit(addr Addr, payload Payload) error

	// Receive blocks up to timeout for one payload. A timeout of zero, or a
	// negative timeout other than Indefinite, is treated as "return
	// immediately if nothing is queued". Passing Indefinite disables the
	// timer.
	Receive(timeout time.Duration) (Payload, error)
}

// Indefinite disables the receive timer, per spec.md §5's INDEFINITE
// sentinel. Transceiver implementations treat it as "block forever".
const Indefinite time.Duration = -1
