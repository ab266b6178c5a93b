package device

import "fmt"

// IndicatorMode selects how an indicator aggregates its actuators.
type IndicatorMode uint8

const (
	// IndicatorAny lights when at least one controlled actuator is on.
	IndicatorAny IndicatorMode = iota + 1
	// IndicatorAll lights when every controlled actuator is on.
	IndicatorAll
	// IndicatorMajority lights when strictly more than half are on.
	IndicatorMajority
)

// Indicator is a derived output reflecting an aggregate over a set of
// actuators. Indicators are refreshed after each state broadcast; they
// never participate in click logic.
type Indicator struct {
	ID        uint8
	Mode      IndicatorMode
	Actuators []int // registry indices

	index int
	on    bool
}

// Indicators is the fixed-capacity indicator registry.
type Indicators struct {
	items    []*Indicator
	byID     map[uint8]int
	sink     Sink
	capacity int
}

// NewIndicators creates a registry with an explicit capacity.
func NewIndicators(capacity int) *Indicators {
	return &Indicators{
		items:    make([]*Indicator, 0, capacity),
		byID:     make(map[uint8]int, capacity),
		capacity: capacity,
	}
}

// SetSink installs the output sink for indicator changes.
func (r *Indicators) SetSink(sink Sink) {
	r.sink = sink
}

// Add registers an indicator.
func (r *Indicators) Add(ind *Indicator) error {
	if ind.ID == 0 {
		return fmt.Errorf("indicator id 0 is reserved")
	}
	if len(r.items) >= r.capacity {
		return fmt.Errorf("too many indicators: capacity is %d", r.capacity)
	}
	if _, dup := r.byID[ind.ID]; dup {
		return fmt.Errorf("duplicate indicator id %d", ind.ID)
	}
	ind.index = len(r.items)
	r.byID[ind.ID] = ind.index
	r.items = append(r.items, ind)
	return nil
}

// Count returns the number of registered indicators.
func (r *Indicators) Count() int {
	return len(r.items)
}

// Get returns the indicator at a registry index.
func (r *Indicators) Get(index int) *Indicator {
	return r.items[index]
}

// State reports whether the indicator is currently lit.
func (ind *Indicator) State() bool {
	return ind.on
}

// Refresh recomputes every indicator from the current actuator states and
// pushes changes to the sink.
func (r *Indicators) Refresh(acts *Actuators) {
	for i, ind := range r.items {
		on := 0
		for _, ai := range ind.Actuators {
			if acts.Get(ai).State() {
				on++
			}
		}
		var lit bool
		switch ind.Mode {
		case IndicatorAny:
			lit = on > 0
		case IndicatorAll:
			lit = on == len(ind.Actuators) && len(ind.Actuators) > 0
		case IndicatorMajority:
			lit = on*2 > len(ind.Actuators)
		}
		if lit != ind.on {
			ind.on = lit
			if r.sink != nil {
				r.sink(i, lit)
			}
		}
	}
}
