package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Day           string        `json:"day"`
	Night         string        `json:"night"`
	Configured    bool          `json:"configured"`
	Persisted     bool          `json:"persisted"`
	Schedule      *ScheduleJSON `json:"schedule,omitempty"`
	SlotsInUse    int           `json:"slots_in_use"`
	ClockTime     string        `json:"clock_time,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Config        ConfigJSON    `json:"config"`
}

// ScheduleJSON is the JSON representation of the active schedule.
type ScheduleJSON struct {
	Day            string `json:"day"`
	Night          string `json:"night"`
	DayIntensity   int    `json:"day_intensity"`
	NightIntensity int    `json:"night_intensity"`
	DST            bool   `json:"dst"`
	WeekendDay     string `json:"weekend_day,omitempty"`
	WeekendNight   string `json:"weekend_night,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	DayOn    int `json:"day_on"`
	DayOff   int `json:"day_off"`
	NightOn  int `json:"night_on"`
	NightOff int `json:"night_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs    int64  `json:"tick_ms"`
	Broker    string `json:"broker"`
	HTTPAddr  string `json:"http_addr"`
	NTPServer string `json:"ntp_server"`
	DBPath    string `json:"db_path"`
}

func buildInner(snap Snapshot) StatusInner {
	day := string(snap.Day)
	if day == "" {
		day = "UNKNOWN"
	}
	night := string(snap.Night)
	if night == "" {
		night = "UNKNOWN"
	}

	inner := StatusInner{
		Day:           day,
		Night:         night,
		Configured:    snap.Configured,
		Persisted:     snap.Persisted,
		SlotsInUse:    snap.SlotsInUse,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			DayOn:    snap.Counts.DayOn,
			DayOff:   snap.Counts.DayOff,
			NightOn:  snap.Counts.NightOn,
			NightOff: snap.Counts.NightOff,
		},
		Config: ConfigJSON{
			TickMs:    snap.Config.TickMs,
			Broker:    snap.Config.Broker,
			HTTPAddr:  snap.Config.HTTPAddr,
			NTPServer: snap.Config.NTPServer,
			DBPath:    snap.Config.DBPath,
		},
	}

	if !snap.ClockTime.IsZero() {
		inner.ClockTime = snap.ClockTime.Format("Monday 15:04:05")
	}
	if snap.Configured {
		inner.Schedule = &ScheduleJSON{
			Day:            snap.Schedule.Day,
			Night:          snap.Schedule.Night,
			DayIntensity:   snap.Schedule.DayIntensity,
			NightIntensity: snap.Schedule.NightIntensity,
			DST:            snap.Schedule.DST,
			WeekendDay:     snap.Schedule.WeekendDay,
			WeekendNight:   snap.Schedule.WeekendNight,
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
