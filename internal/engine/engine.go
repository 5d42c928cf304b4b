// Package engine reconciles submitted schedules into recurring alarms and
// derives the two output channels' state from alarm firings. It owns every
// alarm-slot lifecycle decision; nothing else allocates or releases slots.
//
// The engine is single-threaded by contract: Apply, Tick, and Restore are
// only ever called from the control loop, so a reconfiguration runs to
// completion before the next tick and no locking is needed.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/larsalmen/Nightlight-O-Matic/internal/alarm"
	"github.com/larsalmen/Nightlight-O-Matic/internal/clock"
	"github.com/larsalmen/Nightlight-O-Matic/internal/output"
	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
	"github.com/larsalmen/Nightlight-O-Matic/internal/store"
)

// dstOffset is the single daylight-saving adjustment.
const dstOffset = time.Hour

// Engine is the schedule/timer reconciliation core.
type Engine struct {
	registry *alarm.Registry
	clock    clock.Clock
	store    store.Store
	driver   output.Driver

	// utcOffset is the base timezone offset; DST adds dstOffset on top.
	utcOffset time.Duration

	state ActiveState

	// regularSuspended tracks whether the regular alarm pair is currently
	// parked in favor of the weekend set.
	regularSuspended bool

	// tickNow is the time of the tick in progress; alarm callbacks stamp
	// their events with it.
	tickNow time.Time
	pending []Event

	// lastDriven caches the most recent driver writes so Tick only touches
	// the hardware on change.
	lastDriven map[output.Channel]int
}

// New creates an engine. The registry is owned by the engine from here on.
func New(registry *alarm.Registry, clk clock.Clock, st store.Store, driver output.Driver, utcOffset time.Duration) *Engine {
	return &Engine{
		registry:   registry,
		clock:      clk,
		store:      st,
		driver:     driver,
		utcOffset:  utcOffset,
		lastDriven: map[output.Channel]int{output.Day: -1, output.Night: -1},
	}
}

// State returns a copy of the current aggregate state.
func (e *Engine) State() ActiveState {
	return e.state
}

// SlotsInUse returns the number of live alarm slots.
func (e *Engine) SlotsInUse() int {
	return e.registry.Active()
}

// Apply installs a new schedule: validate, tear down the previous alarms,
// re-apply the clock offset, allocate the new alarm set, and record it.
// Validation failures leave the previous schedule and its alarms untouched.
// The caller persists after a successful Apply.
func (e *Engine) Apply(cand schedule.Schedule) error {
	if err := cand.Validate(); err != nil {
		return err
	}

	if e.state.Initialized {
		e.releaseAll()
	}

	e.state.DST = cand.DST
	e.state.Persisted = false
	e.clock.SetOffset(e.utcOffset + dstFor(cand.DST))
	if err := e.clock.Resync(); err != nil {
		// Tolerated: alarms are placed with the last known correction.
		log.Warn().Err(err).Msg("clock resync failed during reconfiguration")
	}

	if err := e.installAlarms(cand); err != nil {
		return err
	}

	e.state.DayIntensity = cand.DayIntensity
	e.state.NightIntensity = cand.NightIntensity
	e.state.Initialized = true
	e.regularSuspended = false

	log.Info().
		Str("day", cand.Day.String()).
		Str("night", cand.Night.String()).
		Bool("dst", cand.DST).
		Bool("weekend", cand.Weekend != nil).
		Int("slots", e.registry.Active()).
		Msg("schedule applied")
	return nil
}

// installAlarms allocates the full alarm set for cand and stores the handles
// on the engine's DaySchedule records. On allocation failure every slot
// allocated by this call is released before returning.
func (e *Engine) installAlarms(cand schedule.Schedule) error {
	var allocated []alarm.Handle
	var allocErr error

	allocate := func(ds *DaySchedule, day alarm.DayOfWeek, t schedule.TimeOfDay, fn func()) {
		if allocErr != nil {
			return
		}
		h, err := e.registry.Allocate(day, t.Hour, t.Minute, fn)
		if err != nil {
			allocErr = err
			return
		}
		allocated = append(allocated, h)
		ds.handles = append(ds.handles, h)
	}

	day := DaySchedule{Span: cand.Day}
	night := DaySchedule{Span: cand.Night}

	// Regular schedule: one start and one end alarm per channel, every day.
	allocate(&day, alarm.EveryDay, cand.Day.Start, e.startDay)
	allocate(&day, alarm.EveryDay, cand.Day.End, e.endDay)
	allocate(&night, alarm.EveryDay, cand.Night.Start, e.startNight)
	allocate(&night, alarm.EveryDay, cand.Night.End, e.endNight)

	var weekendDay, weekendNight *DaySchedule
	if cand.Weekend != nil {
		// The weekend day channel hands over at the Friday and Sunday
		// boundaries: Friday starts at the regular day-start time and
		// Sunday ends at the regular day-end time.
		weekendDay = &DaySchedule{Span: cand.Weekend.Day}
		allocate(weekendDay, alarm.On(time.Friday), cand.Day.Start, e.startDay)
		allocate(weekendDay, alarm.On(time.Friday), cand.Weekend.Day.End, e.endDay)
		allocate(weekendDay, alarm.On(time.Saturday), cand.Weekend.Day.Start, e.startDay)
		allocate(weekendDay, alarm.On(time.Saturday), cand.Weekend.Day.End, e.endDay)
		allocate(weekendDay, alarm.On(time.Sunday), cand.Weekend.Day.Start, e.startDay)
		allocate(weekendDay, alarm.On(time.Sunday), cand.Day.End, e.endDay)

		// Weekend nights cross midnight, so each segment's end alarm lands
		// on the following calendar day. The Sunday segment allocates no
		// end alarm of its own: the regular night alarms, re-armed on
		// Monday, terminate it at the weekday end time.
		weekendNight = &DaySchedule{Span: cand.Weekend.Night}
		allocate(weekendNight, alarm.On(time.Friday), cand.Weekend.Night.Start, e.startNight)
		allocate(weekendNight, alarm.On(time.Saturday), cand.Weekend.Night.End, e.endNight)
		allocate(weekendNight, alarm.On(time.Saturday), cand.Weekend.Night.Start, e.startNight)
		allocate(weekendNight, alarm.On(time.Sunday), cand.Weekend.Night.End, e.endNight)
		allocate(weekendNight, alarm.On(time.Sunday), cand.Weekend.Night.Start, e.startNight)
	}

	if allocErr != nil {
		for _, h := range allocated {
			e.registry.Release(h)
		}
		return fmt.Errorf("install alarms: %w", allocErr)
	}

	e.state.Day = day
	e.state.Night = night
	e.state.WeekendDay = weekendDay
	e.state.WeekendNight = weekendNight
	return nil
}

// releaseAll frees every alarm slot owned by the current state, in order:
// day, night, weekend day, weekend night. Release tolerates stale handles.
func (e *Engine) releaseAll() {
	for _, h := range e.state.Day.handles {
		e.registry.Release(h)
	}
	for _, h := range e.state.Night.handles {
		e.registry.Release(h)
	}
	if e.state.WeekendDay != nil {
		for _, h := range e.state.WeekendDay.handles {
			e.registry.Release(h)
		}
	}
	if e.state.WeekendNight != nil {
		for _, h := range e.state.WeekendNight.handles {
			e.registry.Release(h)
		}
	}
	e.state.Day.handles = nil
	e.state.Night.handles = nil
	e.state.WeekendDay = nil
	e.state.WeekendNight = nil
}

// Tick advances the engine to now: mediates weekday-vs-weekend alarm
// activation, fires due alarms, persists on any firing, and reconciles the
// physical outputs. Returned events describe this tick's transitions.
func (e *Engine) Tick(now time.Time) []Event {
	if e.state.Initialized {
		suspend := e.state.WeekendDay != nil && isWeekend(now.Weekday())
		if suspend != e.regularSuspended {
			e.setRegularEnabled(!suspend)
			e.regularSuspended = suspend
			log.Debug().Bool("weekend", suspend).Msg("switched active alarm set")
		}
	}

	e.tickNow = now
	e.pending = nil
	e.registry.Tick(now)
	events := e.pending
	e.pending = nil

	if len(events) > 0 {
		// A firing must survive an immediate crash.
		if err := e.persist(); err != nil {
			log.Warn().Err(err).Msg("state not persisted after alarm firing")
		}
	}

	e.drive()
	return events
}

// Restore loads the persisted snapshot, if any, and re-installs it: the
// schedule goes through the normal Apply path and the latched output flags
// are carried over as-is.
func (e *Engine) Restore() error {
	snap, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}
	if err := e.Apply(snap.Schedule()); err != nil {
		return fmt.Errorf("apply persisted schedule: %w", err)
	}
	e.state.Output = OutputState{DayActive: snap.DayActive, NightActive: snap.NightActive}
	e.state.Persisted = true
	e.drive()
	log.Info().Bool("day_active", snap.DayActive).Bool("night_active", snap.NightActive).
		Msg("restored persisted schedule")
	return nil
}

// Persist writes the current state to the store. Called by the request
// surface after a successful Apply; Tick calls the internal variant after
// firings.
func (e *Engine) Persist() error {
	return e.persist()
}

func (e *Engine) persist() error {
	snap := store.Snapshot{
		DST:            e.state.DST,
		Day:            e.state.Day.Span,
		Night:          e.state.Night.Span,
		DayIntensity:   e.state.DayIntensity,
		NightIntensity: e.state.NightIntensity,
		DayActive:      e.state.Output.DayActive,
		NightActive:    e.state.Output.NightActive,
	}
	if e.state.WeekendDay != nil && e.state.WeekendNight != nil {
		snap.Weekend = &schedule.Weekend{
			Day:   e.state.WeekendDay.Span,
			Night: e.state.WeekendNight.Span,
		}
	}
	if err := e.store.Save(snap); err != nil {
		e.state.Persisted = false
		return err
	}
	e.state.Persisted = true
	return nil
}

// Override forces a raw duty on one channel, bypassing the schedule. The
// write-on-change cache is invalidated so the next reconcile restores the
// scheduled output.
func (e *Engine) Override(ch output.Channel, duty int) error {
	if err := e.driver.SetChannel(ch, duty); err != nil {
		return err
	}
	e.lastDriven[ch] = -1
	return nil
}

// setRegularEnabled arms or suspends the regular day/night alarms. Weekend
// alarms stay armed permanently; they only match Friday through Sunday.
func (e *Engine) setRegularEnabled(enabled bool) {
	for _, h := range e.state.Day.handles {
		e.registry.SetEnabled(h, enabled)
	}
	for _, h := range e.state.Night.handles {
		e.registry.SetEnabled(h, enabled)
	}
}

// drive reconciles the physical outputs with the latched flags and the
// configured intensities, writing only on change.
func (e *Engine) drive() {
	if !e.state.Initialized {
		return
	}
	e.driveChannel(output.Day, e.state.Output.DayActive, e.state.DayIntensity)
	e.driveChannel(output.Night, e.state.Output.NightActive, e.state.NightIntensity)
}

func (e *Engine) driveChannel(ch output.Channel, active bool, intensity int) {
	duty := 0
	if active {
		duty = output.DutyForIntensity(intensity)
	}
	if e.lastDriven[ch] == duty {
		return
	}

	var err error
	if active {
		err = e.driver.SetChannel(ch, duty)
	} else {
		err = e.driver.DisableChannel(ch)
	}
	if err != nil {
		log.Error().Err(err).Str("channel", ch.String()).Msg("output write failed")
		return
	}
	e.lastDriven[ch] = duty
}

// Alarm callbacks. Each latches the channel flag and queues an event.

func (e *Engine) startDay()   { e.latch(&e.state.Output.DayActive, true, EventDayOn) }
func (e *Engine) endDay()     { e.latch(&e.state.Output.DayActive, false, EventDayOff) }
func (e *Engine) startNight() { e.latch(&e.state.Output.NightActive, true, EventNightOn) }
func (e *Engine) endNight()   { e.latch(&e.state.Output.NightActive, false, EventNightOff) }

func (e *Engine) latch(flag *bool, on bool, typ EventType) {
	*flag = on
	e.state.Persisted = false
	e.pending = append(e.pending, Event{
		Timestamp:  e.tickNow,
		Type:       typ,
		DayState:   boolToState(e.state.Output.DayActive),
		NightState: boolToState(e.state.Output.NightActive),
	})
}

func dstFor(active bool) time.Duration {
	if active {
		return dstOffset
	}
	return 0
}

// isWeekend reports whether the weekend schedule governs this day.
// Friday is included: weekend night schedules begin Friday evening.
func isWeekend(w time.Weekday) bool {
	return w == time.Friday || w == time.Saturday || w == time.Sunday
}
