package internal

import (
	"testing"
	"time"

	"github.com/larsalmen/Nightlight-O-Matic/internal/alarm"
	"github.com/larsalmen/Nightlight-O-Matic/internal/clock"
	"github.com/larsalmen/Nightlight-O-Matic/internal/engine"
	"github.com/larsalmen/Nightlight-O-Matic/internal/mqtt"
	"github.com/larsalmen/Nightlight-O-Matic/internal/output"
	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
	"github.com/larsalmen/Nightlight-O-Matic/internal/store"
)

// TestIntegrationWeekendCrossover runs the engine minute by minute from
// Friday midnight to Monday morning and checks the full event sequence the
// weekend handover produces, end to end through fakes.
func TestIntegrationWeekendCrossover(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC))
	st := store.NewFakeStore()
	drv := output.NewFakeDriver()
	publisher := mqtt.NewFakePublisher()
	eng := engine.New(alarm.NewRegistry(), clk, st, drv, 2*time.Hour)

	sched := schedule.Schedule{
		Day:            schedule.Span{Start: schedule.TimeOfDay{Hour: 7}, End: schedule.TimeOfDay{Hour: 19}},
		Night:          schedule.Span{Start: schedule.TimeOfDay{Hour: 19}, End: schedule.TimeOfDay{Hour: 7}},
		DayIntensity:   80,
		NightIntensity: 10,
		Weekend: &schedule.Weekend{
			Day:   schedule.Span{Start: schedule.TimeOfDay{Hour: 8}, End: schedule.TimeOfDay{Hour: 21}},
			Night: schedule.Span{Start: schedule.TimeOfDay{Hour: 21}, End: schedule.TimeOfDay{Hour: 9}},
		},
	}
	if err := eng.Apply(sched); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := eng.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if got := eng.SlotsInUse(); got != 15 {
		t.Fatalf("SlotsInUse: got %d, want 15", got)
	}

	// 2026-01-09 is a Friday.
	start := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC) // Monday morning

	var fired []engine.Event
	for now := start; !now.After(end); now = now.Add(time.Minute) {
		clk.Set(now)
		events := eng.Tick(now)
		for _, event := range events {
			if err := publisher.Publish(event); err != nil {
				t.Fatalf("publish at %v: %v", now, err)
			}
		}
		fired = append(fired, events...)
	}

	type boundary struct {
		day  string
		hour int
		typ  engine.EventType
	}
	want := []boundary{
		{"Friday", 7, engine.EventDayOn},     // regular start time still applies Friday
		{"Friday", 21, engine.EventDayOff},   // weekend day end
		{"Friday", 21, engine.EventNightOn},  // weekend night start
		{"Saturday", 8, engine.EventDayOn},   // weekend day start
		{"Saturday", 9, engine.EventNightOff},
		{"Saturday", 21, engine.EventDayOff},
		{"Saturday", 21, engine.EventNightOn},
		{"Sunday", 8, engine.EventDayOn},
		{"Sunday", 9, engine.EventNightOff},
		{"Sunday", 19, engine.EventDayOff},  // regular end time applies Sunday
		{"Sunday", 21, engine.EventNightOn},
		{"Monday", 7, engine.EventDayOn},     // re-armed regular alarms
		{"Monday", 7, engine.EventNightOff},  // terminate the Sunday night segment
	}

	if len(fired) != len(want) {
		t.Fatalf("event count: got %d, want %d (%v)", len(fired), len(want), fired)
	}
	for i, w := range want {
		e := fired[i]
		if e.Type != w.typ {
			t.Errorf("event %d: got %s, want %s", i, e.Type, w.typ)
		}
		if got := e.Timestamp.Weekday().String(); got != w.day {
			t.Errorf("event %d (%s): fired on %s, want %s", i, w.typ, got, w.day)
		}
		if e.Timestamp.Hour() != w.hour {
			t.Errorf("event %d (%s): fired at hour %d, want %d", i, w.typ, e.Timestamp.Hour(), w.hour)
		}
	}

	// Everything that fired was published.
	if len(publisher.Events) != len(want) {
		t.Errorf("published events: got %d, want %d", len(publisher.Events), len(want))
	}

	// Monday morning: day on at the configured intensity, night off.
	if got := drv.Duty[output.Day]; got != 818 {
		t.Errorf("final day duty: got %d, want 818", got)
	}
	if !drv.Disabled[output.Night] {
		t.Error("night channel should be disabled Monday morning")
	}

	// Ten of the ticks fired events; each of those persisted, plus the
	// explicit persist after Apply.
	if st.Saves != 11 {
		t.Errorf("Saves: got %d, want 11", st.Saves)
	}
	if st.Snap == nil || !st.Snap.DayActive || st.Snap.NightActive {
		t.Errorf("final snapshot: %+v", st.Snap)
	}
}

// TestIntegrationRestoreAfterRestart persists a running configuration, then
// builds a fresh engine on the same store and checks it picks up where the
// old one left off.
func TestIntegrationRestoreAfterRestart(t *testing.T) {
	st := store.NewFakeStore()
	sched := schedule.Schedule{
		Day:            schedule.Span{Start: schedule.TimeOfDay{Hour: 7}, End: schedule.TimeOfDay{Hour: 19}},
		Night:          schedule.Span{Start: schedule.TimeOfDay{Hour: 19}, End: schedule.TimeOfDay{Hour: 7}},
		DayIntensity:   60,
		NightIntensity: 5,
	}

	first := engine.New(alarm.NewRegistry(), clock.NewFakeClock(time.Date(2026, 1, 6, 6, 0, 0, 0, time.UTC)), st, output.NewFakeDriver(), 0)
	if err := first.Apply(sched); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := first.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	// Tuesday 07:00: day comes on and night ends, persisting the flags.
	if events := first.Tick(time.Date(2026, 1, 6, 7, 0, 0, 0, time.UTC)); len(events) != 2 {
		t.Fatalf("tick: got %d events, want 2", len(events))
	}

	drv := output.NewFakeDriver()
	second := engine.New(alarm.NewRegistry(), clock.NewFakeClock(time.Date(2026, 1, 6, 7, 30, 0, 0, time.UTC)), st, drv, 0)
	if err := second.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	state := second.State()
	if !state.Initialized || !state.Persisted {
		t.Errorf("restored flags: %+v", state)
	}
	if !state.Output.DayActive {
		t.Error("day output flag lost across restart")
	}
	if got := drv.Duty[output.Day]; got != 614 { // 60% of 1023
		t.Errorf("day duty after restore: got %d, want 614", got)
	}

	// The restored alarms keep running: day ends at 19:00 as scheduled.
	events := second.Tick(time.Date(2026, 1, 6, 19, 0, 0, 0, time.UTC))
	types := make([]engine.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	if len(events) != 2 || types[0] != engine.EventDayOff || types[1] != engine.EventNightOn {
		t.Errorf("tick 19:00 after restore: got %v, want [DAY_OFF NIGHT_ON]", types)
	}
}
