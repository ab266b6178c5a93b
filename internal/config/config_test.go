package config

import (
	"testing"
	"time"

	"github.com/labodj/lsh-core/internal/click"
	"github.com/labodj/lsh-core/internal/device"
)

const sample = `
name = "panel-hall"
encoding = "cbor"

[link]
kind = "serial"
device = "/dev/ttyUSB0"

[timings]
debounce_ms = 30
network_click_timeout_ms = 1500

[[actuators]]
id = 1
pin = 17

[[actuators]]
id = 2
pin = 27
protected = true
auto_off_ms = 60000

[[buttons]]
id = 1
pin = 5
short = true
short_actuators = [1]
long = true
long_mode = "normal"
long_network = true
long_fallback = "local"
long_actuators = [1, 2]

[[buttons]]
id = 2
pin = 6
super_long = true
super_long_mode = "selective"
super_long_actuators = [2]

[[indicators]]
id = 1
pin = 22
mode = "majority"
actuators = [1, 2]

[mqtt]
enabled = true
broker = "tcp://localhost:1883"
topic_base = "home/panel"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Timings.Debounce() != 30*time.Millisecond {
		t.Errorf("explicit debounce lost: %v", cfg.Timings.Debounce())
	}
	if cfg.Timings.NetClickTimeout() != 1500*time.Millisecond {
		t.Errorf("explicit timeout lost: %v", cfg.Timings.NetClickTimeout())
	}
	if cfg.Timings.LongPress() != 400*time.Millisecond {
		t.Errorf("long press default: %v", cfg.Timings.LongPress())
	}
	if cfg.Timings.SwitchDebounce() != 100*time.Millisecond {
		t.Errorf("switch debounce default: %v", cfg.Timings.SwitchDebounce())
	}
	if cfg.Timings.PingInterval() != 10*time.Second {
		t.Errorf("ping interval default: %v", cfg.Timings.PingInterval())
	}
	if cfg.Link.Baud != 250000 {
		t.Errorf("baud default: %d", cfg.Link.Baud)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr default: %q", cfg.HTTP.Addr)
	}
}

func TestParseRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"missing name", `
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
`},
		{"bad encoding", `
name = "p"
encoding = "msgpack"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
`},
		{"serial without device", `
name = "p"
[link]
kind = "serial"
[[actuators]]
id = 1
pin = 17
`},
		{"no actuators", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
`},
		{"actuator id 0", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 0
pin = 17
`},
		{"duplicate actuator id", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[[actuators]]
id = 1
pin = 27
`},
		{"button with no click type", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[[buttons]]
id = 1
pin = 5
`},
		{"button references unknown actuator", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[[buttons]]
id = 1
pin = 5
short = true
short_actuators = [9]
`},
		{"bad long mode", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[[buttons]]
id = 1
pin = 5
long = true
long_mode = "sideways"
`},
		{"bad indicator mode", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[[indicators]]
id = 1
pin = 22
mode = "sometimes"
actuators = [1]
`},
		{"mqtt enabled without broker", `
name = "p"
[link]
kind = "serial"
device = "/dev/ttyUSB0"
[[actuators]]
id = 1
pin = 17
[mqtt]
enabled = true
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.toml)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestBuildRegistries(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	if reg.Actuators.Count() != 2 || reg.Buttons.Count() != 2 || reg.Indicators.Count() != 1 {
		t.Fatalf("counts: %d actuators, %d buttons, %d indicators",
			reg.Actuators.Count(), reg.Buttons.Count(), reg.Indicators.Count())
	}

	prot := reg.Actuators.Get(1)
	if !prot.Protected || prot.AutoOff != time.Minute {
		t.Errorf("actuator 2: protected=%v autoOff=%v", prot.Protected, prot.AutoOff)
	}

	b := reg.Buttons.Get(0)
	opts := b.Detector.Options()
	if !opts.Short || !opts.Long.Enabled || opts.SuperLong.Enabled {
		t.Errorf("button 1 options: %+v", opts)
	}
	if !opts.Long.Network || opts.Long.Fallback != click.FallbackLocal {
		t.Errorf("button 1 network config: %+v", opts.Long)
	}
	if opts.Debounce != 30*time.Millisecond {
		t.Errorf("button 1 debounce: %v", opts.Debounce)
	}
	if len(b.Long) != 2 || b.Long[0] != 0 || b.Long[1] != 1 {
		t.Errorf("button 1 long actuator indices: %v", b.Long)
	}

	b2 := reg.Buttons.Get(1)
	if b2.Detector.Options().SuperLongMode != click.SuperLongSelective {
		t.Errorf("button 2 super-long mode: %v", b2.Detector.Options().SuperLongMode)
	}

	ind := reg.Indicators.Get(0)
	if ind.Mode != device.IndicatorMajority || len(ind.Actuators) != 2 {
		t.Errorf("indicator: %+v", ind)
	}
}

func TestPinOrdering(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if pins := cfg.ActuatorPins(); len(pins) != 2 || pins[0] != 17 || pins[1] != 27 {
		t.Errorf("actuator pins: %v", pins)
	}
	if pins := cfg.ButtonPins(); len(pins) != 2 || pins[0] != 5 || pins[1] != 6 {
		t.Errorf("button pins: %v", pins)
	}
	if pins := cfg.IndicatorPins(); len(pins) != 1 || pins[0] != 22 {
		t.Errorf("indicator pins: %v", pins)
	}
}
