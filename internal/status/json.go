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
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Actuators     []ActuatorJSON `json:"actuators"`
	Gateway       GatewayStatus  `json:"gateway"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        CountsJSON     `json:"click_counts"`
	Config        ConfigJSON     `json:"config"`
}

// ActuatorJSON is one actuator's state.
type ActuatorJSON struct {
	ID    uint8  `json:"id"`
	State string `json:"state"`
}

// GatewayStatus reports gateway link state.
type GatewayStatus struct {
	Connected     bool `json:"connected"`
	PendingClicks bool `json:"pending_clicks"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of click counts.
type CountsJSON struct {
	Short     int `json:"short"`
	Long      int `json:"long"`
	SuperLong int `json:"super_long"`
	Network   int `json:"network"`
	Fallback  int `json:"fallback"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Name       string `json:"name"`
	Encoding   string `json:"encoding"`
	LinkKind   string `json:"link_kind"`
	TickMs     int64  `json:"tick_ms"`
	DebounceMs int64  `json:"debounce_ms"`
	Broker     string `json:"broker,omitempty"`
	HTTPAddr   string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	actuators := make([]ActuatorJSON, len(snap.Actuators))
	for i, a := range snap.Actuators {
		state := "OFF"
		if a.On {
			state = "ON"
		}
		actuators[i] = ActuatorJSON{ID: a.ID, State: state}
	}

	return StatusInner{
		Actuators: actuators,
		Gateway: GatewayStatus{
			Connected:     snap.GatewayConnected,
			PendingClicks: snap.PendingClicks,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Short:     snap.Counts.Short,
			Long:      snap.Counts.Long,
			SuperLong: snap.Counts.SuperLong,
			Network:   snap.Counts.Network,
			Fallback:  snap.Counts.Fallback,
		},
		Config: ConfigJSON{
			Name:       snap.Config.Name,
			Encoding:   snap.Config.Encoding,
			LinkKind:   snap.Config.LinkKind,
			TickMs:     snap.Config.TickMs,
			DebounceMs: snap.Config.DebounceMs,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
		},
	}
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
