// Package mqtt provides telemetry publishing with abstraction for testing.
// Telemetry is an observer: publish failures are logged by callers, never
// fed back into click or actuator logic.
package mqtt

import (
	"encoding/json"
	"time"
)

// DefaultTopicBase is used when the configuration does not set one.
const DefaultTopicBase = "home/panel"

// Topics groups the topic names derived from one base.
type Topics struct {
	Events string // click and state events
	System string // lifecycle events
}

// TopicsFor derives the topic names from a base.
func TopicsFor(base string) Topics {
	if base == "" {
		base = DefaultTopicBase
	}
	return Topics{
		Events: base + "/events",
		System: base + "/system",
	}
}

// Publisher publishes panel telemetry.
type Publisher interface {
	// PublishClick sends a classified click event.
	// Returns error if publishing fails (should not crash the process).
	PublishClick(event ClickEvent) error

	// PublishState sends an actuator state snapshot.
	PublishState(event StateEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ClickEvent is one classified button click.
type ClickEvent struct {
	Timestamp time.Time
	Button    uint8
	Click     string // short, long, super-long
	Origin    string // local, network, fallback
}

// StateEvent is a full actuator state snapshot, registration order.
type StateEvent struct {
	Timestamp time.Time
	States    []bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown,
// gateway connectivity changes).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "GATEWAY_UP", "GATEWAY_DOWN"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Retained  bool   // Whether the message should be retained by the broker

	// RawPayload, if set, is published verbatim instead of the standard
	// system payload. Used for startup/shutdown status snapshots.
	RawPayload []byte
}

// ClickPayload is the wire shape of a click event.
type ClickPayload struct {
	Panel ClickPayloadInner `json:"panel"`
}

// ClickPayloadInner contains the click event details.
type ClickPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Button    uint8  `json:"button"`
	Click     string `json:"click"`
	Origin    string `json:"origin"`
}

// FormatClickPayload creates the JSON payload for a click event.
func FormatClickPayload(event ClickEvent) ([]byte, error) {
	payload := ClickPayload{
		Panel: ClickPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     "CLICK",
			Button:    event.Button,
			Click:     event.Click,
			Origin:    event.Origin,
		},
	}
	return json.Marshal(payload)
}

// StatePayload is the wire shape of a state snapshot.
type StatePayload struct {
	Panel StatePayloadInner `json:"panel"`
}

// StatePayloadInner contains the snapshot details.
type StatePayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	States    []int  `json:"states"`
}

// FormatStatePayload creates the JSON payload for a state snapshot.
func FormatStatePayload(event StateEvent) ([]byte, error) {
	states := make([]int, len(event.States))
	for i, on := range event.States {
		if on {
			states[i] = 1
		}
	}
	payload := StatePayload{
		Panel: StatePayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     "STATE",
			States:    states,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the wire shape of a lifecycle event.
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
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
