package config

import (
	"fmt"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/device"
)

// Registries holds everything built from one configuration, frozen before
// the tick loop starts.
type Registries struct {
	Actuators  *device.Actuators
	Buttons    *device.Buttons
	Indicators *device.Indicators
}

// Build constructs the runtime registries. The configuration is already
// validated, so errors here mean a bug, not bad input, and the caller
// treats them as fatal.
func (c *Config) Build() (*Registries, error) {
	acts := device.NewActuators(len(c.Actuators), c.Timings.SwitchDebounce())
	for _, ac := range c.Actuators {
		a := device.NewActuator(ac.ID)
		a.Protected = ac.Protected
		a.AutoOff = ms(ac.AutoOffMS)
		a.DefaultOn = ac.DefaultOn
		if err := acts.Add(a); err != nil {
			return nil, fmt.Errorf("build actuators: %w", err)
		}
	}

	btns := device.NewButtons(len(c.Buttons))
	for _, bc := range c.Buttons {
		opts, err := c.clickOptions(bc)
		if err != nil {
			return nil, err
		}
		b := device.NewButton(bc.ID, opts)
		if b.Short, err = indicesOf(acts, bc.ShortActuators); err != nil {
			return nil, fmt.Errorf("build button %d: %w", bc.ID, err)
		}
		if b.Long, err = indicesOf(acts, bc.LongActuators); err != nil {
			return nil, fmt.Errorf("build button %d: %w", bc.ID, err)
		}
		if b.SuperLong, err = indicesOf(acts, bc.SuperLongActuators); err != nil {
			return nil, fmt.Errorf("build button %d: %w", bc.ID, err)
		}
		if err := btns.Add(b); err != nil {
			return nil, fmt.Errorf("build buttons: %w", err)
		}
	}

	inds := device.NewIndicators(len(c.Indicators))
	for _, ic := range c.Indicators {
		mode, err := indicatorMode(ic.Mode)
		if err != nil {
			return nil, fmt.Errorf("build indicator %d: %w", ic.ID, err)
		}
		actuators, err := indicesOf(acts, ic.Actuators)
		if err != nil {
			return nil, fmt.Errorf("build indicator %d: %w", ic.ID, err)
		}
		if err := inds.Add(&device.Indicator{ID: ic.ID, Mode: mode, Actuators: actuators}); err != nil {
			return nil, fmt.Errorf("build indicators: %w", err)
		}
	}

	return &Registries{Actuators: acts, Buttons: btns, Indicators: inds}, nil
}

func (c *Config) clickOptions(bc ButtonConfig) (click.Options, error) {
	opts := click.Options{
		Short:          bc.Short,
		Debounce:       c.Timings.Debounce(),
		LongPress:      c.Timings.LongPress(),
		SuperLongPress: c.Timings.SuperLongPress(),
	}
	if bc.Long {
		mode, err := longMode(bc.LongMode)
		if err != nil {
			return click.Options{}, fmt.Errorf("config: button %d: %w", bc.ID, err)
		}
		fb, err := fallback(bc.LongFallback)
		if err != nil {
			return click.Options{}, fmt.Errorf("config: button %d: %w", bc.ID, err)
		}
		opts.Long = click.TimedClick{Enabled: true, Network: bc.LongNetwork, Fallback: fb}
		opts.LongMode = mode
	}
	if bc.SuperLong {
		mode, err := superLongMode(bc.SuperLongMode)
		if err != nil {
			return click.Options{}, fmt.Errorf("config: button %d: %w", bc.ID, err)
		}
		fb, err := fallback(bc.SuperLongFallback)
		if err != nil {
			return click.Options{}, fmt.Errorf("config: button %d: %w", bc.ID, err)
		}
		opts.SuperLong = click.TimedClick{Enabled: true, Network: bc.SuperLongNetwork, Fallback: fb}
		opts.SuperLongMode = mode
	}
	return opts, nil
}

func indicesOf(acts *device.Actuators, ids []uint8) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	indices := make([]int, len(ids))
	for i, id := range ids {
		index, ok := acts.Index(id)
		if !ok {
			return nil, fmt.Errorf("unknown actuator id %d", id)
		}
		indices[i] = index
	}
	return indices, nil
}
