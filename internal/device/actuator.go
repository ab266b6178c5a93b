// Package device holds the panel's actuator, button and indicator objects
// and their fixed-capacity registries. Registries are populated once at
// startup and frozen before the tick loop starts; after that, all mutation
// happens through the single tick owner.
package device

import "time"

// Actuator is a digital output (relay) with on/off state, an optional
// auto-off timer and an optional protection flag that exempts it from bulk
// turn-off actions.
type Actuator struct {
	ID        uint8
	Protected bool
	AutoOff   time.Duration // 0 disables the auto-off timer
	DefaultOn bool

	index      int
	on         bool
	lastSwitch time.Time
}

// NewActuator creates an actuator in its default state.
func NewActuator(id uint8) *Actuator {
	return &Actuator{ID: id}
}

// State reports whether the actuator is currently on.
func (a *Actuator) State() bool {
	return a.on
}

// Index returns the actuator's dense registry index.
func (a *Actuator) Index() int {
	return a.index
}

// set applies a new state, honoring the minimum interval between switches.
// Reports whether the state actually changed.
func (a *Actuator) set(on bool, now time.Time, minSwitchGap time.Duration) bool {
	if a.on == on {
		return false
	}
	if minSwitchGap != 0 && !a.lastSwitch.IsZero() && now.Sub(a.lastSwitch) < minSwitchGap {
		return false
	}
	a.on = on
	a.lastSwitch = now
	return true
}

// autoOffDue reports whether the auto-off timer has elapsed for an
// actuator that is currently on.
func (a *Actuator) autoOffDue(now time.Time) bool {
	return a.on && a.AutoOff > 0 && now.Sub(a.lastSwitch) >= a.AutoOff
}
