package clock

import (
	"testing"
	"time"
)

func TestNowAppliesConfiguredOffset(t *testing.T) {
	c := NewNTPClock("pool.invalid", 2*time.Hour)

	got := c.Now()
	want := time.Now().UTC().Add(2 * time.Hour)
	if diff := got.Sub(want); diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("Now: got %v, want within 2s of %v", got, want)
	}
}

func TestSetOffsetShiftsNow(t *testing.T) {
	c := NewNTPClock("pool.invalid", 0)
	before := c.Now()

	c.SetOffset(3 * time.Hour)
	after := c.Now()

	if diff := after.Sub(before); diff < 3*time.Hour-2*time.Second || diff > 3*time.Hour+2*time.Second {
		t.Errorf("offset shift: got %v, want ~3h", diff)
	}
}

func TestLastSyncZeroBeforeResync(t *testing.T) {
	c := NewNTPClock("pool.invalid", 0)
	if !c.LastSync().IsZero() {
		t.Error("LastSync should be zero before any successful resync")
	}
}
