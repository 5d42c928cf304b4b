package clock

import "time"

// FakeClock is a test double with a scripted current time.
type FakeClock struct {
	// Current is the time returned by Now. Offsets are recorded but not
	// applied; tests script the exact local time they want.
	Current time.Time

	// Offset mirrors the last SetOffset call.
	Offset time.Duration

	// Resyncs counts Resync calls.
	Resyncs int

	// ResyncError, if set, is returned by Resync.
	ResyncError error
}

// NewFakeClock creates a FakeClock starting at the given local time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{Current: t}
}

// Now returns the scripted time.
func (f *FakeClock) Now() time.Time {
	return f.Current
}

// SetOffset records the offset.
func (f *FakeClock) SetOffset(offset time.Duration) {
	f.Offset = offset
}

// Resync counts the call and returns the scripted error, if any.
func (f *FakeClock) Resync() error {
	f.Resyncs++
	return f.ResyncError
}

// Advance moves the scripted time forward.
func (f *FakeClock) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}

// Set jumps the scripted time to t.
func (f *FakeClock) Set(t time.Time) {
	f.Current = t
}
