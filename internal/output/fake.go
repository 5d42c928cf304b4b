package output

// FakeDriver records channel writes for test assertions.
type FakeDriver struct {
	// Duty holds the last duty cycle written per channel.
	Duty map[Channel]int

	// Disabled reports whether the last write per channel was a disable.
	Disabled map[Channel]bool

	// Writes counts every SetChannel and DisableChannel call.
	Writes int

	// Err, if set, is returned by SetChannel and DisableChannel.
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver with both channels disabled.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Duty:     map[Channel]int{Day: 0, Night: 0},
		Disabled: map[Channel]bool{Day: true, Night: true},
	}
}

// SetChannel records the duty cycle.
func (f *FakeDriver) SetChannel(ch Channel, duty int) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes++
	f.Duty[ch] = duty
	f.Disabled[ch] = false
	return nil
}

// DisableChannel records the disable.
func (f *FakeDriver) DisableChannel(ch Channel) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes++
	f.Duty[ch] = 0
	f.Disabled[ch] = true
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
