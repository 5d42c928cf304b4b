package output

import "github.com/rs/zerolog/log"

// NopDriver logs channel writes instead of touching hardware. Used when
// gpio is disabled in the config (dry runs, development machines).
type NopDriver struct{}

// NewNopDriver creates a NopDriver.
func NewNopDriver() *NopDriver {
	return &NopDriver{}
}

// SetChannel logs the write.
func (NopDriver) SetChannel(ch Channel, duty int) error {
	log.Debug().Str("channel", ch.String()).Int("duty", duty).Msg("gpio disabled, skipping write")
	return nil
}

// DisableChannel logs the disable.
func (NopDriver) DisableChannel(ch Channel) error {
	log.Debug().Str("channel", ch.String()).Msg("gpio disabled, skipping disable")
	return nil
}

// Close is a no-op.
func (NopDriver) Close() error {
	return nil
}
