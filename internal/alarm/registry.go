// Package alarm provides a bounded pool of recurring wall-clock alarms.
// Slots are allocated from a fixed arena and addressed by small handles;
// a generation counter makes releasing a stale handle a harmless no-op.
// The registry is driven by Tick from a single goroutine and performs no
// locking of its own.
package alarm

import (
	"errors"
	"time"
)

// Capacity is the fixed number of alarm slots. A full reconfiguration with a
// weekend override needs 15 slots; the pool is sized with headroom and never
// grows.
const Capacity = 28

// ErrCapacityExceeded is returned by Allocate when every slot is in use.
var ErrCapacityExceeded = errors.New("alarm pool capacity exceeded")

// DayOfWeek selects which calendar day an alarm fires on.
// EveryDay matches all seven days.
type DayOfWeek int

// EveryDay is the wildcard day selector.
const EveryDay DayOfWeek = -1

// On converts a time.Weekday into a day selector.
func On(w time.Weekday) DayOfWeek {
	return DayOfWeek(w)
}

func (d DayOfWeek) matches(w time.Weekday) bool {
	return d == EveryDay || time.Weekday(d) == w
}

// Handle identifies an allocated slot. The zero Handle is never valid.
type Handle struct {
	index int
	gen   uint32
}

type slotState uint8

const (
	slotFree slotState = iota
	slotArmed
	slotSuspended
)

type slot struct {
	state     slotState
	gen       uint32
	day       DayOfWeek
	hour      int
	minute    int
	fire      func()
	lastFired time.Time // minute of the most recent firing, for dedupe
}

// Registry is the alarm slot arena.
type Registry struct {
	slots [Capacity]slot
}

// NewRegistry returns an empty registry with all slots free.
func NewRegistry() *Registry {
	return &Registry{}
}

// Allocate registers a recurring alarm firing fn at hour:minute on the given
// day (or every day). The returned handle is used for SetEnabled and Release.
func (r *Registry) Allocate(day DayOfWeek, hour, minute int, fn func()) (Handle, error) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.state != slotFree {
			continue
		}
		s.gen++
		s.state = slotArmed
		s.day = day
		s.hour = hour
		s.minute = minute
		s.fire = fn
		s.lastFired = time.Time{}
		return Handle{index: i, gen: s.gen}, nil
	}
	return Handle{}, ErrCapacityExceeded
}

// Release frees the slot. Releasing an already-released, reallocated, or
// zero handle does nothing: reconfiguration tears alarms down defensively
// and must tolerate double-free.
func (r *Registry) Release(h Handle) {
	s, ok := r.slot(h)
	if !ok {
		return
	}
	s.state = slotFree
	s.fire = nil
}

// SetEnabled suspends or resumes firing without freeing the slot. Used to
// park the regular alarms while the weekend override is in effect.
func (r *Registry) SetEnabled(h Handle, enabled bool) {
	s, ok := r.slot(h)
	if !ok {
		return
	}
	if enabled {
		s.state = slotArmed
	} else {
		s.state = slotSuspended
	}
}

// Enabled reports whether the handle refers to a live, armed slot.
func (r *Registry) Enabled(h Handle) bool {
	s, ok := r.slot(h)
	return ok && s.state == slotArmed
}

// Live reports whether the handle refers to an allocated slot, armed or not.
func (r *Registry) Live(h Handle) bool {
	_, ok := r.slot(h)
	return ok
}

// Active returns the number of allocated slots.
func (r *Registry) Active() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].state != slotFree {
			n++
		}
	}
	return n
}

// Tick fires every armed alarm whose day and hour:minute match now, at most
// once per matching minute. The host loop must call it at sub-minute
// granularity; firing is keyed on the truncated minute so a slow or uneven
// tick cadence cannot double-fire.
func (r *Registry) Tick(now time.Time) {
	minute := now.Truncate(time.Minute)
	for i := range r.slots {
		s := &r.slots[i]
		if s.state != slotArmed {
			continue
		}
		if !s.day.matches(now.Weekday()) || s.hour != now.Hour() || s.minute != now.Minute() {
			continue
		}
		if s.lastFired.Equal(minute) {
			continue
		}
		s.lastFired = minute
		s.fire()
	}
}

func (r *Registry) slot(h Handle) (*slot, bool) {
	if h.index < 0 || h.index >= Capacity || h.gen == 0 {
		return nil, false
	}
	s := &r.slots[h.index]
	if s.state == slotFree || s.gen != h.gen {
		return nil, false
	}
	return s, true
}
