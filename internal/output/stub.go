//go:build !linux

package output

import (
	"errors"
	"time"
)

// Default pin assignments (BCM numbering).
const (
	DefaultPinDay   = 13
	DefaultPinNight = 19
)

// PWMDriver is not available on non-Linux platforms.
type PWMDriver struct{}

// NewPWMDriver returns an error on non-Linux platforms.
func NewPWMDriver(chipName string, pinDay, pinNight int, period time.Duration) (*PWMDriver, error) {
	return nil, errors.New("output: gpio not supported on this platform (requires Linux)")
}

// SetChannel is not implemented on non-Linux platforms.
func (d *PWMDriver) SetChannel(ch Channel, duty int) error {
	return errors.New("output: gpio not supported")
}

// DisableChannel is not implemented on non-Linux platforms.
func (d *PWMDriver) DisableChannel(ch Channel) error {
	return errors.New("output: gpio not supported")
}

// Close is a no-op on non-Linux platforms.
func (d *PWMDriver) Close() error {
	return nil
}
