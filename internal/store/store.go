// Package store persists one snapshot of controller state so the schedule
// and the latched output flags survive power loss.
package store

import "github.com/larsalmen/Nightlight-O-Matic/internal/schedule"

// Snapshot is the single durable record of controller state. There is no
// versioning field; a schema change requires wiping the stored row.
type Snapshot struct {
	DST            bool              `json:"dst"`
	Day            schedule.Span     `json:"day"`
	Night          schedule.Span     `json:"night"`
	Weekend        *schedule.Weekend `json:"weekend,omitempty"`
	DayIntensity   int               `json:"day_intensity"`
	NightIntensity int               `json:"night_intensity"`
	DayActive      bool              `json:"day_active"`
	NightActive    bool              `json:"night_active"`
}

// Schedule reconstructs the candidate schedule held in the snapshot.
func (s Snapshot) Schedule() schedule.Schedule {
	return schedule.Schedule{
		Day:            s.Day,
		Night:          s.Night,
		DayIntensity:   s.DayIntensity,
		NightIntensity: s.NightIntensity,
		DST:            s.DST,
		Weekend:        s.Weekend,
	}
}

// Store is the persistence adapter. Save must report durable-commit
// success, not merely buffering; a Save error is non-fatal to the caller
// (in-memory state stays authoritative, only crash recovery is at risk).
type Store interface {
	// Load returns the stored snapshot, or (nil, nil) when none exists.
	Load() (*Snapshot, error)

	// Save durably replaces the stored snapshot.
	Save(Snapshot) error
}
