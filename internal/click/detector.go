package click

import "time"

// fsm states
type state uint8

const (
	stateIdle state = iota
	stateDebouncing
	statePressed
	stateReleased // transient, always returns to idle within one evaluation
)

// fired tracks which timed action has already been triggered during the
// current press. Ordering matters: once super-long fires, long cannot.
type fired uint8

const (
	firedNone fired = iota
	firedLong
	firedSuperLong
)

// Detector classifies raw pin samples for a single button into click
// results. It is the only owner of the button's runtime FSM state and must
// be evaluated exactly once per tick with the tick's cached time.
type Detector struct {
	opts      Options
	quick     bool
	state     state
	changedAt time.Time // last state transition; in statePressed, the official press start
	fired     fired
}

// NewDetector creates a detector with the given options. Zero timing
// parameters are replaced by the defaults.
func NewDetector(opts Options) *Detector {
	opts = opts.withDefaults()
	return &Detector{opts: opts, quick: opts.Quick()}
}

// Options returns the detector's configuration.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect consumes one (pressed, now) sample and returns the classification.
//
// A release is processed in the same evaluation that observes it: the
// Pressed case falls through to Released so no tick is lost.
func (d *Detector) Detect(pressed bool, now time.Time) Result {
	switch d.state {
	case stateIdle:
		if pressed {
			d.state = stateDebouncing
			d.changedAt = now
		}

	case stateDebouncing:
		if now.Sub(d.changedAt) >= d.opts.Debounce {
			if !pressed {
				// Just noise.
				d.state = stateIdle
				break
			}
			d.state = statePressed
			d.changedAt = now // official start of the press
			d.fired = firedNone
			if d.quick {
				return ResultShortQuick
			}
		}

	case statePressed:
		if pressed {
			held := now.Sub(d.changedAt)

			// Super-long has priority: a press crossing both thresholds
			// in one tick yields super-long only.
			if d.opts.SuperLong.Enabled && d.fired < firedSuperLong && held >= d.opts.SuperLongPress {
				d.fired = firedSuperLong
				return ResultSuperLong
			}
			if d.opts.Long.Enabled && d.fired < firedLong && held >= d.opts.LongPress {
				d.fired = firedLong
				return ResultLong
			}
			return ResultHeld
		}
		d.state = stateReleased
		fallthrough

	case stateReleased:
		d.state = stateIdle

		// A quick button already fired on press; consume the release.
		if d.quick {
			return ResultNone
		}
		if d.fired == firedNone {
			if d.opts.Short {
				return ResultShort
			}
			return ResultNone
		}
		// A timed action fired during this press; the release is silent.
		return ResultNone
	}
	return ResultNone
}
