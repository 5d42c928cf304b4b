// Package status provides a thread-safe status tracker for the nightlightd
// daemon. The control loop writes it on every tick; HTTP handlers and MQTT
// snapshot payloads read it.
package status

import (
	"sync"
	"time"

	"github.com/larsalmen/Nightlight-O-Matic/internal/engine"
)

// ScheduleInfo is a display copy of the active schedule.
type ScheduleInfo struct {
	Day            string // "HH:MM-HH:MM"
	Night          string
	DayIntensity   int
	NightIntensity int
	DST            bool
	WeekendDay     string // empty when no weekend override
	WeekendNight   string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs    int64
	Broker    string
	HTTPAddr  string
	NTPServer string
	DBPath    string
}

// EventCounts tracks the number of each transition event since startup.
type EventCounts struct {
	DayOn    int
	DayOff   int
	NightOn  int
	NightOff int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Day           engine.State
	Night         engine.State
	Configured    bool // a schedule has been installed
	Persisted     bool
	Schedule      ScheduleInfo
	Counts        EventCounts
	SlotsInUse    int
	ClockTime     time.Time // engine-local wall clock at the last tick
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update mirrors the engine state. Called from the control loop on every
// tick and after every reconfiguration.
func (t *Tracker) Update(state engine.ActiveState, clockTime time.Time, slotsInUse int) {
	t.mu.Lock()
	t.snap.Day = channelState(state.Initialized, state.Output.DayActive)
	t.snap.Night = channelState(state.Initialized, state.Output.NightActive)
	t.snap.Configured = state.Initialized
	t.snap.Persisted = state.Persisted
	t.snap.SlotsInUse = slotsInUse
	t.snap.ClockTime = clockTime
	t.snap.Schedule = scheduleInfo(state)
	t.mu.Unlock()
}

// RecordEvents bumps the per-type counters for this tick's transitions.
func (t *Tracker) RecordEvents(events []engine.Event) {
	if len(events) == 0 {
		return
	}
	t.mu.Lock()
	for _, e := range events {
		switch e.Type {
		case engine.EventDayOn:
			t.snap.Counts.DayOn++
		case engine.EventDayOff:
			t.snap.Counts.DayOff++
		case engine.EventNightOn:
			t.snap.Counts.NightOn++
		case engine.EventNightOff:
			t.snap.Counts.NightOff++
		}
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection state.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

func channelState(configured, active bool) engine.State {
	if !configured {
		return "" // rendered as UNKNOWN
	}
	if active {
		return engine.StateOn
	}
	return engine.StateOff
}

func scheduleInfo(state engine.ActiveState) ScheduleInfo {
	if !state.Initialized {
		return ScheduleInfo{}
	}
	info := ScheduleInfo{
		Day:            state.Day.Span.String(),
		Night:          state.Night.Span.String(),
		DayIntensity:   state.DayIntensity,
		NightIntensity: state.NightIntensity,
		DST:            state.DST,
	}
	if state.WeekendDay != nil {
		info.WeekendDay = state.WeekendDay.Span.String()
	}
	if state.WeekendNight != nil {
		info.WeekendNight = state.WeekendNight.Span.String()
	}
	return info
}
