// Package status provides a thread-safe status tracker for the panel
// daemon. It is written by the tick loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"
)

// ClickCounts tallies classified clicks since startup.
type ClickCounts struct {
	Short     int
	Long      int
	SuperLong int
	Network   int // clicks delegated to the gateway
	Fallback  int // network clicks resolved by local fallback
}

// Config contains daemon configuration for display.
type Config struct {
	Name       string
	Encoding   string
	LinkKind   string
	TickMs     int64
	DebounceMs int64
	Broker     string
	HTTPAddr   string
}

// ActuatorState is one actuator's id and current state.
type ActuatorState struct {
	ID uint8
	On bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Actuators        []ActuatorState
	GatewayConnected bool
	PendingClicks    bool
	MQTTConnected    bool
	Counts           ClickCounts
	StartTime        time.Time
	Now              time.Time
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets actuator states, gateway connectivity, pending network
// clicks and click counts. Called from the tick loop.
func (t *Tracker) Update(actuators []ActuatorState, gatewayConnected, pendingClicks bool, counts ClickCounts) {
	t.mu.Lock()
	t.snap.Actuators = append(t.snap.Actuators[:0:0], actuators...)
	t.snap.GatewayConnected = gatewayConnected
	t.snap.PendingClicks = pendingClicks
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
