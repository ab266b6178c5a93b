package device

import (
	"fmt"
	"time"

	"github.com/labodj/lsh-core/internal/click"
)

// Button is one physical panel button: its click configuration, the three
// actuator lists it controls (registry indices, duplicates and overlaps
// are legal) and the detector that owns its FSM state.
type Button struct {
	ID       uint8
	Detector *click.Detector

	// Actuator registry indices per click type, in configuration order.
	Short     []int
	Long      []int
	SuperLong []int

	index int
}

// NewButton creates a button with the given click options.
func NewButton(id uint8, opts click.Options) *Button {
	return &Button{ID: id, Detector: click.NewDetector(opts)}
}

// Index returns the button's dense registry index.
func (b *Button) Index() int {
	return b.index
}

// Actuators returns the actuator index list for a click type.
func (b *Button) Actuators(t click.Type) []int {
	switch t {
	case click.TypeShort:
		return b.Short
	case click.TypeLong:
		return b.Long
	case click.TypeSuperLong:
		return b.SuperLong
	default:
		return nil
	}
}

// Buttons is the fixed-capacity button registry.
type Buttons struct {
	items    []*Button
	byID     map[uint8]int
	capacity int
}

// NewButtons creates a registry with an explicit capacity.
func NewButtons(capacity int) *Buttons {
	return &Buttons{
		items:    make([]*Button, 0, capacity),
		byID:     make(map[uint8]int, capacity),
		capacity: capacity,
	}
}

// Add registers a button, assigning its dense index. Capacity overflow,
// duplicate ids and the reserved id 0 are configuration errors.
func (r *Buttons) Add(b *Button) error {
	if b.ID == 0 {
		return fmt.Errorf("button id 0 is reserved")
	}
	if len(r.items) >= r.capacity {
		return fmt.Errorf("too many buttons: capacity is %d", r.capacity)
	}
	if _, dup := r.byID[b.ID]; dup {
		return fmt.Errorf("duplicate button id %d", b.ID)
	}
	b.index = len(r.items)
	r.byID[b.ID] = b.index
	r.items = append(r.items, b)
	return nil
}

// Count returns the number of registered buttons.
func (r *Buttons) Count() int {
	return len(r.items)
}

// Get returns the button at a registry index.
func (r *Buttons) Get(index int) *Button {
	return r.items[index]
}

// Exists reports whether a button with the given id is registered.
func (r *Buttons) Exists(id uint8) bool {
	_, ok := r.byID[id]
	return ok
}

// Index returns the registry index for an id.
func (r *Buttons) Index(id uint8) (int, bool) {
	i, ok := r.byID[id]
	return i, ok
}

// IDs returns the button ids in registration order.
func (r *Buttons) IDs() []uint8 {
	ids := make([]uint8, len(r.items))
	for i, b := range r.items {
		ids[i] = b.ID
	}
	return ids
}

// Perform executes the local action for a classified click on a button.
// Reports whether any actuator changed state.
//
// Short toggles each attached actuator. Long applies the configured mode:
// normal turns everything on when strictly less than half of the attached
// actuators are on, off otherwise; on-only and off-only force one state.
// Super-long normal turns off every unprotected actuator in the system;
// selective only the button's own unprotected list.
func Perform(b *Button, t click.Type, acts *Actuators, now time.Time) bool {
	opts := b.Detector.Options()
	switch t {
	case click.TypeShort:
		if !opts.Short {
			return false
		}
		changed := false
		for _, i := range b.Short {
			changed = acts.Toggle(i, now) || changed
		}
		return changed

	case click.TypeLong:
		if !opts.Long.Enabled {
			return false
		}
		var target bool
		switch opts.LongMode {
		case click.LongNormal:
			on := 0
			for _, i := range b.Long {
				if acts.Get(i).State() {
					on++
				}
			}
			// Strict minority on -> turn all on; tie or majority -> all off.
			target = on*2 < len(b.Long)
		case click.LongOnOnly:
			target = true
		case click.LongOffOnly:
			target = false
		default:
			return false
		}
		changed := false
		for _, i := range b.Long {
			changed = acts.SetState(i, target, now) || changed
		}
		return changed

	case click.TypeSuperLong:
		if !opts.SuperLong.Enabled {
			return false
		}
		switch opts.SuperLongMode {
		case click.SuperLongNormal:
			return acts.TurnOffUnprotected(now)
		case click.SuperLongSelective:
			changed := false
			for _, i := range b.SuperLong {
				if acts.Get(i).Protected {
					continue
				}
				changed = acts.SetState(i, false, now) || changed
			}
			return changed
		default:
			return false
		}

	default:
		return false
	}
}
