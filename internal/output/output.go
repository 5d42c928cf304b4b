// Package output drives the two lighting channels with hardware
// abstraction. The real implementation bit-bangs PWM on Linux GPIO
// character-device lines; the fake records calls for tests.
package output

import "math"

// Channel identifies a lighting output.
type Channel int

// The two physical channels.
const (
	Day Channel = iota
	Night
)

// String returns the channel name used in logs and payloads.
func (c Channel) String() string {
	if c == Day {
		return "day"
	}
	return "night"
}

// MaxDuty is the driver's native duty-cycle range upper bound.
const MaxDuty = 1023

// DutyForIntensity maps a 1-100 intensity onto the native 0-1023 range.
func DutyForIntensity(intensity int) int {
	return int(math.Round(float64(intensity) * MaxDuty / 100))
}

// Driver performs the physical channel writes.
type Driver interface {
	// SetChannel drives the channel at the given duty cycle (0..MaxDuty).
	SetChannel(ch Channel, duty int) error

	// DisableChannel turns the channel fully off.
	DisableChannel(ch Channel) error

	// Close releases hardware resources.
	Close() error
}
