package transport

import "errors"

// ErrReachedAttemptLimit is returned by Tx when a segment went
// unacknowledged after AttemptLimit tries (spec.md §7).
var ErrReachedAttemptLimit = errors.New("transport: reached attempt limit")

// ErrUnknownPort is a local configuration error: the destination port has
// no known network address in the address-resolution table.
var ErrUnknownPort = errors.New("transport: destination port has no known network address")

// internal-only receive classifications (spec.md §7: "never surfaced").
type rxOutcome uint8

const (
	rxSuccess rxOutcome = iota
	rxOutdated
	rxMalformed    // decode failure: noise on the channel, retried silently
	rxForeignPort  // well-formed segment addressed to a different local port
)

// internal-only transmit classifications (spec.md §7: "never surfaced").
type txOutcome uint8

const (
	txSuccess txOutcome = iota
	txNotAcknowledged
	txNotAnAck
	txOldAck
)
