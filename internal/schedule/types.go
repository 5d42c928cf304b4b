// Package schedule contains the schedule data model and its validation rules.
// This package has NO external dependencies (no clock, storage, or GPIO).
// It knows nothing about alarms; it only describes what the user asked for.
package schedule

import (
	"errors"
	"fmt"
)

// Validation errors. Callers match these with errors.Is.
var (
	// ErrInvalidTimeOfDay is returned for an out-of-range or unparseable hour:minute.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrIncompleteWeekend is returned when only some of the four weekend
	// times were supplied. Weekend overrides are all-or-nothing.
	ErrIncompleteWeekend = errors.New("incomplete weekend schedule")

	// ErrInvalidIntensity is returned for an intensity outside 1..100.
	ErrInvalidIntensity = errors.New("invalid intensity")
)

// TimeOfDay is an immutable wall-clock hour:minute value.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Valid reports whether the value is within 00:00-23:59.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String renders the value as "HH:MM", the format used by the web form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Parse parses a "HH:MM" string into a TimeOfDay.
// The empty string and malformed input return ErrInvalidTimeOfDay.
func Parse(s string) (TimeOfDay, error) {
	var t TimeOfDay
	var tail string
	n, err := fmt.Sscanf(s, "%d:%d%s", &t.Hour, &t.Minute, &tail)
	if n < 2 || (err != nil && n != 2) || tail != "" {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return t, nil
}

// Span is one channel's on/off boundary pair. End may be earlier than Start,
// which means the span crosses midnight (e.g. night 19:00-07:00).
type Span struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (s Span) valid() bool {
	return s.Start.Valid() && s.End.Valid()
}

// String renders the span as "HH:MM-HH:MM".
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Weekend is the optional alternate schedule applied Friday through Sunday.
// Absence is expressed as a nil *Weekend, never a sentinel time value.
type Weekend struct {
	Day   Span `json:"day"`
	Night Span `json:"night"`
}

// Schedule is a complete candidate configuration as submitted by the user.
type Schedule struct {
	Day            Span     `json:"day"`
	Night          Span     `json:"night"`
	DayIntensity   int      `json:"day_intensity"`
	NightIntensity int      `json:"night_intensity"`
	DST            bool     `json:"dst"`
	Weekend        *Weekend `json:"weekend,omitempty"`
}

// Validate checks ranges and weekend completeness. It is the single place
// the engine trusts; the web form performs its own parsing but the engine
// re-validates every submission.
func (s Schedule) Validate() error {
	for _, span := range []Span{s.Day, s.Night} {
		if !span.valid() {
			return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, span)
		}
	}
	if s.Weekend != nil {
		for _, span := range []Span{s.Weekend.Day, s.Weekend.Night} {
			if !span.valid() {
				return fmt.Errorf("%w: weekend %s", ErrInvalidTimeOfDay, span)
			}
		}
	}
	for _, i := range []int{s.DayIntensity, s.NightIntensity} {
		if i < 1 || i > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidIntensity, i)
		}
	}
	return nil
}

// ParseWeekend builds the optional weekend override from the four form
// fields. All four empty means "no override" (nil, nil); a partial set is
// rejected with ErrIncompleteWeekend.
func ParseWeekend(dayStart, dayEnd, nightStart, nightEnd string) (*Weekend, error) {
	fields := []string{dayStart, dayEnd, nightStart, nightEnd}
	empty := 0
	for _, f := range fields {
		if f == "" {
			empty++
		}
	}
	if empty == len(fields) {
		return nil, nil
	}
	if empty > 0 {
		return nil, ErrIncompleteWeekend
	}

	var w Weekend
	var err error
	if w.Day.Start, err = Parse(dayStart); err != nil {
		return nil, err
	}
	if w.Day.End, err = Parse(dayEnd); err != nil {
		return nil, err
	}
	if w.Night.Start, err = Parse(nightStart); err != nil {
		return nil, err
	}
	if w.Night.End, err = Parse(nightEnd); err != nil {
		return nil, err
	}
	return &w, nil
}
