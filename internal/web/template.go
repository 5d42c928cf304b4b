package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/larsalmen/Nightlight-O-Matic/internal/status"
)

func stateOrUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": stateOrUnknown,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Nightlight-O-Matic</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
form table input { width: 8em; }
fieldset { border: 1px solid #ddd; margin: 1em 0; padding: 0.5em 1em; }
legend { font-weight: bold; }
button { font-family: monospace; padding: 4px 12px; }
</style>
</head>
<body>
<h1>Nightlight-O-Matic</h1>

<h2>State</h2>
<table>
<tr><th>Day channel</th><td class="{{if eq (stateOrUnknown (printf "%s" .Day)) "ON"}}on{{else if eq (stateOrUnknown (printf "%s" .Day)) "OFF"}}off{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Day)}}</td></tr>
<tr><th>Night channel</th><td class="{{if eq (stateOrUnknown (printf "%s" .Night)) "ON"}}on{{else if eq (stateOrUnknown (printf "%s" .Night)) "OFF"}}off{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Night)}}</td></tr>
<tr><th>Configured</th><td>{{if .Configured}}yes{{else}}no{{end}}</td></tr>
<tr><th>Persisted</th><td>{{if .Persisted}}yes{{else}}no{{end}}</td></tr>
{{if not .ClockTime.IsZero}}<tr><th>Controller time</th><td>{{.ClockTime.Format "Monday 15:04:05"}}</td></tr>{{end}}
<tr><th>Alarm slots in use</th><td>{{.SlotsInUse}}</td></tr>
</table>

{{if .Configured}}
<h2>Active Schedule</h2>
<table>
<tr><th>Day</th><td>{{.Schedule.Day}} @ {{.Schedule.DayIntensity}}%</td></tr>
<tr><th>Night</th><td>{{.Schedule.Night}} @ {{.Schedule.NightIntensity}}%</td></tr>
{{if .Schedule.WeekendDay}}<tr><th>Weekend day</th><td>{{.Schedule.WeekendDay}}</td></tr>
<tr><th>Weekend night</th><td>{{.Schedule.WeekendNight}}</td></tr>{{end}}
<tr><th>DST</th><td>{{if .Schedule.DST}}on{{else}}off{{end}}</td></tr>
</table>
{{end}}

<h2>Set Schedule</h2>
<form method="POST" action="/time">
<fieldset>
<legend>Weekdays</legend>
<table>
<tr><th>Day start</th><td><input name="dayStart" placeholder="HH:MM" value="{{.Schedule.DayStartValue}}" required></td></tr>
<tr><th>Day end</th><td><input name="dayEnd" placeholder="HH:MM" value="{{.Schedule.DayEndValue}}" required></td></tr>
<tr><th>Day intensity (1-100)</th><td><input name="dayIntensity" type="number" min="1" max="100" value="{{.ScheduleInfo.DayIntensity}}" required></td></tr>
<tr><th>Night start</th><td><input name="nightStart" placeholder="HH:MM" value="{{.Schedule.NightStartValue}}" required></td></tr>
<tr><th>Night end</th><td><input name="nightEnd" placeholder="HH:MM" value="{{.Schedule.NightEndValue}}" required></td></tr>
<tr><th>Night intensity (1-100)</th><td><input name="nightIntensity" type="number" min="1" max="100" value="{{.ScheduleInfo.NightIntensity}}" required></td></tr>
</table>
</fieldset>
<fieldset>
<legend>Weekend override (all four or none)</legend>
<table>
<tr><th>Day start</th><td><input name="weekendDayStart" placeholder="HH:MM" value="{{.Schedule.WeekendDayStartValue}}"></td></tr>
<tr><th>Day end</th><td><input name="weekendDayEnd" placeholder="HH:MM" value="{{.Schedule.WeekendDayEndValue}}"></td></tr>
<tr><th>Night start</th><td><input name="weekendNightStart" placeholder="HH:MM" value="{{.Schedule.WeekendNightStartValue}}"></td></tr>
<tr><th>Night end</th><td><input name="weekendNightEnd" placeholder="HH:MM" value="{{.Schedule.WeekendNightEndValue}}"></td></tr>
</table>
</fieldset>
<table>
<tr><th>DST (+1h)</th><td><input name="dst" type="checkbox"{{if .ScheduleInfo.DST}} checked{{end}}></td></tr>
<tr><th>Gatekeeper</th><td><input name="gatekeeper" type="password" required></td></tr>
</table>
<button type="submit">Apply</button>
</form>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Day ON</th><td>{{.Counts.DayOn}}</td></tr>
<tr><th>Day OFF</th><td>{{.Counts.DayOff}}</td></tr>
<tr><th>Night ON</th><td>{{.Counts.NightOn}}</td></tr>
<tr><th>Night OFF</th><td>{{.Counts.NightOff}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>NTP</th><td>{{.Config.NTPServer}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a>{{if .DebugEnabled}} | <a href="/debug">PWM debug</a>{{end}}</p>
</body>
</html>
`

// formSchedule exposes the active schedule's boundary times split back into
// per-field values for form prefill.
type formSchedule struct {
	status.ScheduleInfo
}

func splitSpan(span string) (string, string) {
	for i := 0; i < len(span); i++ {
		if span[i] == '-' {
			return span[:i], span[i+1:]
		}
	}
	return "", ""
}

func (f formSchedule) DayStartValue() string   { s, _ := splitSpan(f.Day); return s }
func (f formSchedule) DayEndValue() string     { _, e := splitSpan(f.Day); return e }
func (f formSchedule) NightStartValue() string { s, _ := splitSpan(f.Night); return s }
func (f formSchedule) NightEndValue() string   { _, e := splitSpan(f.Night); return e }

func (f formSchedule) WeekendDayStartValue() string   { s, _ := splitSpan(f.WeekendDay); return s }
func (f formSchedule) WeekendDayEndValue() string     { _, e := splitSpan(f.WeekendDay); return e }
func (f formSchedule) WeekendNightStartValue() string { s, _ := splitSpan(f.WeekendNight); return s }
func (f formSchedule) WeekendNightEndValue() string   { _, e := splitSpan(f.WeekendNight); return e }

func renderHTML(w io.Writer, snap status.Snapshot, debugEnabled bool) {
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		Schedule     formSchedule
		ScheduleInfo status.ScheduleInfo
		DebugEnabled bool
	}{
		Snapshot:     snap,
		Uptime:       snap.Uptime(),
		Schedule:     formSchedule{ScheduleInfo: snap.Schedule},
		ScheduleInfo: snap.Schedule,
		DebugEnabled: debugEnabled,
	}
	indexTmpl.Execute(w, data)
}

var debugTmpl = template.Must(template.New("debug").Parse(debugHTML))

const debugHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Nightlight-O-Matic — PWM debug</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; }
td, th { text-align: left; padding: 4px 8px; }
button { font-family: monospace; padding: 4px 12px; }
</style>
</head>
<body>
<h1>PWM debug</h1>
<p>Forces a raw duty on one channel. The next alarm firing takes it back.</p>
<form method="POST" action="/debug">
<table>
<tr><th>Channel</th><td><select name="channel"><option value="day">day</option><option value="night">night</option></select></td></tr>
<tr><th>Duty (0-1023)</th><td><input name="duty" type="number" min="0" max="1023" value="0" required></td></tr>
<tr><th>Gatekeeper</th><td><input name="gatekeeper" type="password" required></td></tr>
</table>
<button type="submit">Set</button>
</form>
<p><a href="/">back</a></p>
</body>
</html>
`

func renderDebugHTML(w io.Writer) {
	debugTmpl.Execute(w, nil)
}
