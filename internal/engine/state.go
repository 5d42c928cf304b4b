package engine

import (
	"time"

	"github.com/larsalmen/Nightlight-O-Matic/internal/alarm"
	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
)

// State represents the logical state of a lighting channel.
type State string

// Channel states.
const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// EventType represents a channel transition caused by an alarm firing.
type EventType string

// Transition events.
const (
	EventDayOn    EventType = "DAY_ON"
	EventDayOff   EventType = "DAY_OFF"
	EventNightOn  EventType = "NIGHT_ON"
	EventNightOff EventType = "NIGHT_OFF"
)

// Event records one alarm firing, for MQTT and status consumers.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	DayState   State
	NightState State
}

// DaySchedule is one channel's boundary pair for one schedule class,
// together with the alarm slots allocated for it. The handles are owned by
// the registry; they are kept here only so reconfiguration can tear them
// down.
type DaySchedule struct {
	Span    schedule.Span
	handles []alarm.Handle
}

// OutputState holds the latched on/off flags per channel. They are updated
// exclusively by alarm firings, never by polling the schedule boundaries,
// so a brief clock resync gap cannot flip an output.
type OutputState struct {
	DayActive   bool
	NightActive bool
}

// ActiveState is the root aggregate of controller state. It is created
// zero-valued at startup and lives for the whole process.
type ActiveState struct {
	// DST reports whether the one-hour daylight-saving offset is applied.
	DST bool

	// Persisted is true only while the in-memory state matches the store.
	Persisted bool

	// Initialized is false until the first schedule has been installed.
	// It guards the teardown path: there is nothing to release before then.
	Initialized bool

	// Regular schedule, always present once initialized.
	Day   DaySchedule
	Night DaySchedule

	// Weekend override, nil when not configured. The two are always set
	// and cleared together.
	WeekendDay   *DaySchedule
	WeekendNight *DaySchedule

	// PWM duty-cycle targets, 1-100.
	DayIntensity   int
	NightIntensity int

	// Latched channel flags.
	Output OutputState
}

func boolToState(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}
