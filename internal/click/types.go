// Package click contains the pure debounce and classification logic for
// panel buttons. This package has NO external dependencies (no GPIO, no
// serial, no time.Sleep). Time is always injectable via time.Time parameters.
package click

import "time"

// Type identifies a click classification.
type Type uint8

const (
	TypeNone Type = iota
	TypeShort
	TypeLong
	TypeSuperLong
)

// String returns the lowercase name of the click type.
func (t Type) String() string {
	switch t {
	case TypeShort:
		return "short"
	case TypeLong:
		return "long"
	case TypeSuperLong:
		return "super-long"
	default:
		return "none"
	}
}

// Result is what Detect reports for one evaluation of one button.
type Result uint8

const (
	// ResultNone means nothing to act on: idle, noise, still debouncing,
	// or a release that already had its action fired during the press.
	ResultNone Result = iota
	// ResultShort is the canonical short click, fired on release.
	ResultShort
	// ResultShortQuick is a short click fired on the press edge. Emitted
	// only for buttons where short is the sole enabled click type.
	ResultShortQuick
	// ResultLong fires while the button is held past the long threshold.
	ResultLong
	// ResultSuperLong fires while the button is held past the super-long
	// threshold. It suppresses ResultLong for the rest of the press.
	ResultSuperLong
	// ResultHeld means the press is confirmed and ongoing with no new action.
	ResultHeld
)

// LongMode selects the behavior of a long click action.
type LongMode uint8

const (
	// LongNormal turns the attached actuators all on when strictly less
	// than half of them are on, all off otherwise.
	LongNormal LongMode = iota + 1
	// LongOnOnly forces the attached actuators on.
	LongOnOnly
	// LongOffOnly forces the attached actuators off.
	LongOffOnly
)

// SuperLongMode selects the behavior of a super-long click action.
type SuperLongMode uint8

const (
	// SuperLongNormal turns off every unprotected actuator in the system.
	SuperLongNormal SuperLongMode = iota + 1
	// SuperLongSelective turns off only the button's own unprotected
	// super-long actuators.
	SuperLongSelective
)

// Fallback is the policy applied when a network-mediated click cannot be
// completed (timeout or forced failover).
type Fallback uint8

const (
	// FallbackNothing suppresses the action entirely.
	FallbackNothing Fallback = iota + 1
	// FallbackLocal performs the local click action instead.
	FallbackLocal
)

// Default timing parameters, matching the firmware this protocol came from.
const (
	DefaultDebounce       = 20 * time.Millisecond
	DefaultLongPress      = 400 * time.Millisecond
	DefaultSuperLongPress = 1000 * time.Millisecond
)

// TimedClick is the per-type configuration of a long or super-long click.
type TimedClick struct {
	Enabled  bool
	Network  bool     // action is delegated to the gateway when connected
	Fallback Fallback // applied when the network path cannot complete
}

// Options is the full, construction-time configuration of one button's
// click behavior. It is read-only after the detector is created.
type Options struct {
	Short bool

	Long     TimedClick
	LongMode LongMode

	SuperLong     TimedClick
	SuperLongMode SuperLongMode

	Debounce       time.Duration
	LongPress      time.Duration
	SuperLongPress time.Duration
}

// Quick reports whether short clicks fire on the press edge: short is
// enabled and neither timed click is. This is intentional edge-fire
// behavior; a quick button's release never emits anything.
func (o Options) Quick() bool {
	return o.Short && !o.Long.Enabled && !o.SuperLong.Enabled
}

// Timed returns the timed-click configuration for a long or super-long
// type. Other types report a zero TimedClick.
func (o Options) Timed(t Type) TimedClick {
	switch t {
	case TypeLong:
		return o.Long
	case TypeSuperLong:
		return o.SuperLong
	default:
		return TimedClick{}
	}
}

// withDefaults fills in zero timing parameters.
func (o Options) withDefaults() Options {
	if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}
	if o.LongPress == 0 {
		o.LongPress = DefaultLongPress
	}
	if o.SuperLongPress == 0 {
		o.SuperLongPress = DefaultSuperLongPress
	}
	return o
}
