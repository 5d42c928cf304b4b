package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/larsalmen/Nightlight-O-Matic/internal/schedule"
)

// parseScheduleForm builds a candidate schedule from the submitted form.
// Field names match the original controller form so saved browser bookmarks
// and automations keep working.
func parseScheduleForm(r *http.Request) (schedule.Schedule, error) {
	var sched schedule.Schedule

	var err error
	if sched.Day.Start, err = parseField(r, "dayStart"); err != nil {
		return schedule.Schedule{}, err
	}
	if sched.Day.End, err = parseField(r, "dayEnd"); err != nil {
		return schedule.Schedule{}, err
	}
	if sched.Night.Start, err = parseField(r, "nightStart"); err != nil {
		return schedule.Schedule{}, err
	}
	if sched.Night.End, err = parseField(r, "nightEnd"); err != nil {
		return schedule.Schedule{}, err
	}

	if sched.DayIntensity, err = parseIntensity(r, "dayIntensity"); err != nil {
		return schedule.Schedule{}, err
	}
	if sched.NightIntensity, err = parseIntensity(r, "nightIntensity"); err != nil {
		return schedule.Schedule{}, err
	}

	sched.DST = r.PostFormValue("dst") == "on" || r.PostFormValue("dst") == "true" || r.PostFormValue("dst") == "1"

	sched.Weekend, err = schedule.ParseWeekend(
		r.PostFormValue("weekendDayStart"),
		r.PostFormValue("weekendDayEnd"),
		r.PostFormValue("weekendNightStart"),
		r.PostFormValue("weekendNightEnd"),
	)
	if err != nil {
		return schedule.Schedule{}, err
	}

	return sched, nil
}

func parseField(r *http.Request, name string) (schedule.TimeOfDay, error) {
	v := r.PostFormValue(name)
	if v == "" {
		return schedule.TimeOfDay{}, fmt.Errorf("%s: %w: missing", name, schedule.ErrInvalidTimeOfDay)
	}
	t, err := schedule.Parse(v)
	if err != nil {
		return schedule.TimeOfDay{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func parseIntensity(r *http.Request, name string) (int, error) {
	v := r.PostFormValue(name)
	if v == "" {
		return 0, fmt.Errorf("%s: %w: missing", name, schedule.ErrInvalidIntensity)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q", name, schedule.ErrInvalidIntensity, v)
	}
	return n, nil
}
