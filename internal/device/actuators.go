package device

import (
	"fmt"
	"time"
)

// Sink receives applied output changes, in registry index order. The GPIO
// writer is wired in here; tests use a recording function.
type Sink func(index int, on bool)

// Actuators is the fixed-capacity actuator registry. Ids map to dense
// indices through a lookup table built at configuration time.
type Actuators struct {
	items     []*Actuator
	byID      map[uint8]int
	autoOff   []int // indices of actuators with an auto-off timer
	switchGap time.Duration
	sink      Sink
	capacity  int
}

// NewActuators creates a registry with an explicit capacity and the
// registry-wide minimum interval between switches of one actuator.
func NewActuators(capacity int, switchGap time.Duration) *Actuators {
	return &Actuators{
		items:     make([]*Actuator, 0, capacity),
		byID:      make(map[uint8]int, capacity),
		switchGap: switchGap,
		capacity:  capacity,
	}
}

// SetSink installs the output sink. Must be called before the tick loop.
func (r *Actuators) SetSink(sink Sink) {
	r.sink = sink
}

// Add registers an actuator. Exceeding the capacity, reusing an id or
// using the reserved id 0 is a configuration error; the daemon must not
// start with an inconsistent table.
func (r *Actuators) Add(a *Actuator) error {
	if a.ID == 0 {
		return fmt.Errorf("actuator id 0 is reserved")
	}
	if len(r.items) >= r.capacity {
		return fmt.Errorf("too many actuators: capacity is %d", r.capacity)
	}
	if _, dup := r.byID[a.ID]; dup {
		return fmt.Errorf("duplicate actuator id %d", a.ID)
	}
	a.index = len(r.items)
	a.on = a.DefaultOn
	r.byID[a.ID] = a.index
	r.items = append(r.items, a)
	if a.AutoOff > 0 {
		r.autoOff = append(r.autoOff, a.index)
	}
	return nil
}

// Count returns the number of registered actuators.
func (r *Actuators) Count() int {
	return len(r.items)
}

// Get returns the actuator at a registry index.
func (r *Actuators) Get(index int) *Actuator {
	return r.items[index]
}

// Exists reports whether an actuator with the given id is registered.
// Id 0 never exists, by convention.
func (r *Actuators) Exists(id uint8) bool {
	_, ok := r.byID[id]
	return ok
}

// Index returns the registry index for an id.
func (r *Actuators) Index(id uint8) (int, bool) {
	i, ok := r.byID[id]
	return i, ok
}

// IDs returns the actuator ids in registration order.
func (r *Actuators) IDs() []uint8 {
	ids := make([]uint8, len(r.items))
	for i, a := range r.items {
		ids[i] = a.ID
	}
	return ids
}

// StatesInto appends the on/off state of every actuator, in registration
// order, to dst.
func (r *Actuators) StatesInto(dst []bool) []bool {
	for _, a := range r.items {
		dst = append(dst, a.on)
	}
	return dst
}

// SetState applies a state to one actuator and reports whether it changed.
func (r *Actuators) SetState(index int, on bool, now time.Time) bool {
	a := r.items[index]
	if !a.set(on, now, r.switchGap) {
		return false
	}
	if r.sink != nil {
		r.sink(index, on)
	}
	return true
}

// Toggle flips one actuator's state.
func (r *Actuators) Toggle(index int, now time.Time) bool {
	return r.SetState(index, !r.items[index].on, now)
}

// SetAll applies one state per actuator positionally. The caller must
// have verified len(states) == Count().
func (r *Actuators) SetAll(states []bool, now time.Time) bool {
	changed := false
	for i, on := range states {
		changed = r.SetState(i, on, now) || changed
	}
	return changed
}

// TurnOffUnprotected turns off every actuator without the protection flag.
func (r *Actuators) TurnOffUnprotected(now time.Time) bool {
	changed := false
	for i, a := range r.items {
		if a.Protected {
			continue
		}
		changed = r.SetState(i, false, now) || changed
	}
	return changed
}

// AutoOffSweep turns off every actuator whose auto-off timer has elapsed.
// Invoked once per slow tick by the controller.
func (r *Actuators) AutoOffSweep(now time.Time) bool {
	changed := false
	for _, i := range r.autoOff {
		if r.items[i].autoOffDue(now) {
			changed = r.SetState(i, false, now) || changed
		}
	}
	return changed
}
