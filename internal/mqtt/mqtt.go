// Package mqtt publishes lighting events with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/larsalmen/Nightlight-O-Matic/internal/engine"
)

// Topic is the MQTT topic for channel transition events.
const Topic = "home/nightlight/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/nightlight/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a channel transition event to the broker.
	// Returns error if publishing fails (must not crash the process).
	Publish(event engine.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the broker should retain the message
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Nightlight NightlightPayload `json:"nightlight"`
}

// NightlightPayload contains the transition event details.
type NightlightPayload struct {
	Timestamp string       `json:"timestamp"`
	Event     string       `json:"event"`
	Day       ChannelState `json:"day"`
	Night     ChannelState `json:"night"`
}

// ChannelState represents a single channel's state.
type ChannelState struct {
	State string `json:"state"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event engine.Event) ([]byte, error) {
	payload := Payload{
		Nightlight: NightlightPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Day:       ChannelState{State: string(event.DayState)},
			Night:     ChannelState{State: string(event.NightState)},
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT payload for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
