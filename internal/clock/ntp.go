package clock

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTPClock derives local time from the system clock corrected by an NTP
// offset. It is used only from the control loop and needs no locking.
type NTPClock struct {
	server string
	offset time.Duration // combined UTC + DST offset
	delta  time.Duration // system-clock correction from the last sync

	lastSync time.Time
}

// NewNTPClock creates a clock synchronizing against the given server
// (e.g. "pool.ntp.org") with an initial UTC offset.
func NewNTPClock(server string, offset time.Duration) *NTPClock {
	return &NTPClock{server: server, offset: offset}
}

// Now returns the offset-adjusted local wall-clock time.
func (c *NTPClock) Now() time.Time {
	return time.Now().UTC().Add(c.delta + c.offset)
}

// SetOffset replaces the combined UTC+DST offset.
func (c *NTPClock) SetOffset(offset time.Duration) {
	c.offset = offset
}

// Resync queries the NTP server and updates the system-clock correction.
func (c *NTPClock) Resync() error {
	resp, err := ntp.Query(c.server)
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", c.server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("ntp response from %s: %w", c.server, err)
	}
	c.delta = resp.ClockOffset
	c.lastSync = time.Now()
	return nil
}

// LastSync returns when the clock last synchronized successfully
// (zero if never).
func (c *NTPClock) LastSync() time.Time {
	return c.lastSync
}
