package transport

import "time"

// Protocol constants (spec.md §6).
const (
	AckTimeout     = 1500 * time.Millisecond
	AckDelay       = 250 * time.Millisecond
	SegmentSpacing = 250 * time.Millisecond
	RetryDelay     = 250 * time.Millisecond
	AttemptLimit   = 10
)
