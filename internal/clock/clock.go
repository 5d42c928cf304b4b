// Package clock supplies schedule-local wall-clock time.
// The real implementation synchronizes against an NTP server; the fake
// allows tests to script time. Between syncs the consumer tolerates a
// stale offset — alarms latch state, they do not poll boundaries.
package clock

import "time"

// Clock provides offset-adjusted wall-clock time to the control loop.
type Clock interface {
	// Now returns the current local time (UTC + configured offset).
	Now() time.Time

	// SetOffset replaces the combined UTC+DST offset applied to Now.
	SetOffset(offset time.Duration)

	// Resync refreshes the clock against its time source. Failures are
	// transient; the previous correction stays in effect.
	Resync() error
}
